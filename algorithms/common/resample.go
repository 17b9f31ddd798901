package common

// ResampleMethod picks how values between input samples are estimated
type ResampleMethod int

const (
	ResampleLinear ResampleMethod = iota
	// ResampleCubic uses a Catmull-Rom spline through the four nearest samples
	ResampleCubic
)

// Resample converts signal from fromRate to toRate by interpolation. The
// input is returned unchanged when the rates match or either is invalid.
// There is no anti-alias filter, so downsampling far below the vocal band
// will fold energy back.
func Resample(signal []float64, fromRate, toRate int, method ResampleMethod) []float64 {
	if len(signal) == 0 || fromRate <= 0 || toRate <= 0 || fromRate == toRate {
		return signal
	}

	ratio := float64(fromRate) / float64(toRate)
	n := int(float64(len(signal)) / ratio)
	if n <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		switch method {
		case ResampleCubic:
			out[i] = cubicAt(signal, pos)
		default:
			out[i] = linearAt(signal, pos)
		}
	}
	return out
}

func linearAt(data []float64, pos float64) float64 {
	last := len(data) - 1
	if pos <= 0 {
		return data[0]
	}
	if pos >= float64(last) {
		return data[last]
	}

	i := int(pos)
	frac := pos - float64(i)
	return data[i] + frac*(data[i+1]-data[i])
}

func cubicAt(data []float64, pos float64) float64 {
	if len(data) < 4 {
		return linearAt(data, pos)
	}
	last := len(data) - 1
	if pos >= float64(last) {
		return data[last]
	}
	if pos <= 0 {
		return data[0]
	}

	i := int(pos)
	frac := pos - float64(i)
	at := func(k int) float64 {
		return data[max(0, min(last, k))]
	}
	y0, y1, y2, y3 := at(i-1), at(i), at(i+1), at(i+2)

	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*frac+a1)*frac+a2)*frac + y1
}
