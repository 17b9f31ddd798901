package common

import (
	"testing"
)

func TestResampleLength(t *testing.T) {
	signal := make([]float64, 1000)

	tests := []struct {
		from, to int
		want     int
	}{
		{44100, 22050, 500},
		{8000, 16000, 2000},
		{16000, 16000, 1000},
		{0, 16000, 1000},
	}

	for _, tt := range tests {
		if got := len(Resample(signal, tt.from, tt.to, ResampleLinear)); got != tt.want {
			t.Errorf("Resample %d->%d: length %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestResampleLinearRamp(t *testing.T) {
	ramp := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	// Doubling the rate should land halfway between samples
	up := Resample(ramp, 1, 2, ResampleLinear)
	for i, v := range up[:len(up)-2] {
		if !almostEqual(v, float64(i)/2, 1e-12) {
			t.Fatalf("up[%d] = %v, want %v", i, v, float64(i)/2)
		}
	}

	down := Resample(ramp, 2, 1, ResampleLinear)
	for i, v := range down {
		if !almostEqual(v, float64(2*i), 1e-12) {
			t.Errorf("down[%d] = %v, want %v", i, v, float64(2*i))
		}
	}
}

func TestResampleCubicPassesThroughSamples(t *testing.T) {
	signal := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	up := Resample(signal, 1, 4, ResampleCubic)

	for i, want := range signal[:len(signal)-1] {
		if got := up[4*i]; !almostEqual(got, want, 1e-12) {
			t.Errorf("up[%d] = %v, want original sample %v", 4*i, got, want)
		}
	}
}
