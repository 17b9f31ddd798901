package common

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestStatistics(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	if got := Mean(data); !almostEqual(got, 2.5, 1e-12) {
		t.Errorf("Mean = %v, want 2.5", got)
	}
	// sample variance of 1..4 is 5/3
	if got := Variance(data); !almostEqual(got, 5.0/3.0, 1e-12) {
		t.Errorf("Variance = %v, want 5/3", got)
	}
	if got := Range(data); got != 3 {
		t.Errorf("Range = %v, want 3", got)
	}
	if got := MeanAbsDiff([]float64{0, 2, 1, 1}); !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("MeanAbsDiff = %v, want 1", got)
	}
	if got := Variance([]float64{7}); got != 0 {
		t.Errorf("Variance of single value = %v, want 0", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, -3, 3, -3}); !almostEqual(got, 3, 1e-12) {
		t.Errorf("RMS = %v, want 3", got)
	}
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
}

func TestSemitones(t *testing.T) {
	tests := []struct {
		hz, ref, want float64
	}{
		{440, 440, 0},
		{880, 440, 12},
		{220, 440, -12},
		{0, 440, 0},
	}
	for _, tt := range tests {
		if got := HzToSemitones(tt.hz, tt.ref); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("HzToSemitones(%v, %v) = %v, want %v", tt.hz, tt.ref, got, tt.want)
		}
	}

	hz := SemitonesToHz(5, 440)
	if got := HzToSemitones(hz, 440); !almostEqual(got, 5, 1e-9) {
		t.Errorf("round trip = %v, want 5", got)
	}
}

func TestFoldOctave(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{12, 0},
		{-12, 0},
		{1, 1},
		{11, 1},
		{13, 1},
		{6, 6},
		{-7, 5},
	}
	for _, tt := range tests {
		if got := FoldOctave(tt.in); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("FoldOctave(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp01(-1) != 0 || Clamp01(2) != 1 || Clamp01(0.3) != 0.3 {
		t.Errorf("Clamp01 out of range handling wrong")
	}
	if NextPowerOfTwo(1000) != 1024 || NextPowerOfTwo(1024) != 1024 {
		t.Errorf("NextPowerOfTwo wrong")
	}
}
