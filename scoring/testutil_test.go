package scoring

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-reverso/scoring/config"
	"github.com/RyanBlaney/sonido-reverso/scoring/extractors"
)

const (
	testSampleRate = 8000
	testFrameSize  = 64
	testHopSize    = 16
	testRefHz      = 440.0
)

// stubFrame describes what the stub extractor reports for one code
type stubFrame struct {
	semitone float64
	voiced   bool
	mfcc     []float64
	entropy  float64
	zcr      float64
	energy   float64
}

// voicedCode is a clean sung or spoken frame at semitone s relative to 440 Hz
func voicedCode(s float64, mfcc ...float64) stubFrame {
	return stubFrame{semitone: s, voiced: true, mfcc: mfcc, entropy: 0.6, zcr: 0.1, energy: 0.1}
}

// breathCode is a quiet unvoiced frame between phrases
func breathCode(mfcc ...float64) stubFrame {
	return stubFrame{mfcc: mfcc, entropy: 0.8, zcr: 0.2, energy: 0.005}
}

// stubExtractor decodes a code from the first sample of each frame and
// returns the features listed for it. Codes are written by codedSignal as
// blocks of constant amplitude 0.1 + 0.05*code, one block per hop.
type stubExtractor struct {
	codes   []stubFrame
	delay   time.Duration
	panicAt int // code whose MFCC call panics, -1 for none
	calls   atomic.Int64
}

func newStubExtractor(codes ...stubFrame) *stubExtractor {
	return &stubExtractor{codes: codes, panicAt: -1}
}

func (s *stubExtractor) code(frame []float64) (int, stubFrame) {
	c := int(math.Round((math.Abs(frame[0]) - 0.1) / 0.05))
	c = max(0, min(len(s.codes)-1, c))
	return c, s.codes[c]
}

func (s *stubExtractor) Pitch(frame []float64, sampleRate int) float64 {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	_, f := s.code(frame)
	if !f.voiced {
		return 0
	}
	return testRefHz * math.Pow(2, f.semitone/12)
}

func (s *stubExtractor) MFCC(frame []float64, sampleRate int) ([]float64, error) {
	c, f := s.code(frame)
	if c == s.panicAt {
		panic("stub mfcc failure")
	}
	return append([]float64(nil), f.mfcc...), nil
}

func (s *stubExtractor) SpectralEntropy(frame []float64, sampleRate int) float64 {
	_, f := s.code(frame)
	return f.entropy
}

func (s *stubExtractor) ZeroCrossingRate(frame []float64) float64 {
	_, f := s.code(frame)
	return f.zcr
}

func (s *stubExtractor) RMS(frame []float64) float64 {
	_, f := s.code(frame)
	return f.energy
}

var _ extractors.FeatureExtractor = (*stubExtractor)(nil)

// codedSignal writes one block per code so that frame i starts on code i.
// Trailing blocks repeat the last code so every code gets its own frame.
func codedSignal(codes ...int) []float32 {
	pad := testFrameSize/testHopSize - 1
	out := make([]float32, 0, (len(codes)+pad)*testHopSize)
	write := func(c int) {
		v := float32(0.1 + 0.05*float64(c))
		for range testHopSize {
			out = append(out, v)
		}
	}
	for _, c := range codes {
		write(c)
	}
	for range pad {
		write(codes[len(codes)-1])
	}
	return out
}

// repeatCodes returns code repeated n times
func repeatCodes(code, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = code
	}
	return out
}

// testPresets returns the built-in bundle with framing small enough for the
// stub signals
func testPresets(d config.Difficulty, m config.VocalMode) config.Presets {
	p := config.DefaultPresets(d, m)
	p.Audio.FrameSize = testFrameSize
	p.Audio.HopSize = testHopSize
	return p
}

func testPresetStore(t *testing.T) *config.PresetStore {
	t.Helper()
	var overrides []config.Presets
	for _, d := range config.Difficulties {
		for _, m := range config.ScoredModes {
			overrides = append(overrides, testPresets(d, m))
		}
	}
	store, err := config.NewPresetStore(overrides...)
	if err != nil {
		t.Fatalf("NewPresetStore: %v", err)
	}
	return store
}

func newReadyStrategy(t *testing.T, coeffs ModeCoefficients, ex extractors.FeatureExtractor, d config.Difficulty) *Strategy {
	t.Helper()
	s := NewStrategy(coeffs, ex)
	p := testPresets(d, coeffs.Mode)
	if err := s.Initialize(&p); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

// frame builds a FeatureFrame directly; hz 0 means unvoiced
func frame(hz float64, mfcc ...float64) extractors.FeatureFrame {
	return extractors.FeatureFrame{PitchHz: hz, MFCC: mfcc, Energy: 0.1, Entropy: 0.6, ZCR: 0.1}
}

// semitoneFrames builds voiced frames at the given semitones relative to 440 Hz
func semitoneFrames(semitones ...float64) []extractors.FeatureFrame {
	out := make([]extractors.FeatureFrame, len(semitones))
	for i, s := range semitones {
		out[i] = frame(testRefHz*math.Pow(2, s/12), 1, 2, 3)
	}
	return out
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
