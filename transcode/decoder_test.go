package transcode

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// pcm16WAV encodes interleaved int16 samples as a canonical PCM WAV file
func pcm16WAV(t *testing.T, sampleRate, channels int, samples []int16) []byte {
	t.Helper()
	var buf bytes.Buffer
	dataSize := uint32(len(samples) * 2)

	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * channels * 2))
	write(uint16(channels * 2))
	write(uint16(16))

	buf.WriteString("data")
	write(dataSize)
	write(samples)

	return buf.Bytes()
}

func sineInt16(n int, freq float64, sampleRate int, amplitude float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func TestDecodeMono(t *testing.T) {
	samples := sineInt16(8000, 220, 8000, 0.5)
	data := pcm16WAV(t, 8000, 1, samples)

	audio, err := NewDecoder(nil).DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if audio.SampleRate != 8000 || audio.Channels != 1 {
		t.Errorf("unexpected format %d Hz / %d channels", audio.SampleRate, audio.Channels)
	}
	if len(audio.PCM) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(audio.PCM))
	}
	if audio.Duration != time.Second {
		t.Errorf("expected 1s, got %v", audio.Duration)
	}
	if audio.Metadata == nil || audio.Metadata.BitsPerSample != 16 || audio.Metadata.Format != "wav" {
		t.Errorf("unexpected metadata %+v", audio.Metadata)
	}

	var peak float32
	for _, v := range audio.PCM {
		peak = max(peak, v, -v)
	}
	if math.Abs(float64(peak)-0.5) > 0.01 {
		t.Errorf("expected peak near 0.5, got %f", peak)
	}
}

func TestDecodeStereoDownmix(t *testing.T) {
	// Left at +0.5, right at -0.25
	var samples []int16
	for range 100 {
		samples = append(samples, 16384, -8192)
	}

	audio, err := NewDecoder(nil).DecodeBytes(pcm16WAV(t, 16000, 2, samples))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if audio.Channels != 2 || len(audio.PCM) != 100 {
		t.Fatalf("expected 100 mono samples from 2 channels, got %d from %d", len(audio.PCM), audio.Channels)
	}
	for i, v := range audio.PCM {
		if math.Abs(float64(v)-0.125) > 0.001 {
			t.Fatalf("sample %d = %f, want 0.125", i, v)
		}
	}
}

func TestDecodeResamplesToTarget(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.TargetSampleRate = 16000

	audio, err := NewDecoder(cfg).DecodeBytes(pcm16WAV(t, 8000, 1, sineInt16(4000, 220, 8000, 0.3)))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if audio.SampleRate != 16000 || len(audio.PCM) != 8000 {
		t.Errorf("expected 8000 samples at 16 kHz, got %d at %d", len(audio.PCM), audio.SampleRate)
	}
	if !audio.Metadata.Resampled {
		t.Error("expected the resampled flag")
	}
}

func TestDecodeRemovesDCOffset(t *testing.T) {
	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = 8192
	}

	cfg := DefaultDecoderConfig()
	cfg.DCCutoff = 20

	audio, err := NewDecoder(cfg).DecodeBytes(pcm16WAV(t, 8000, 1, samples))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if !audio.Metadata.DCRemoved {
		t.Error("expected the dc_removed flag")
	}
	if last := audio.PCM[len(audio.PCM)-1]; math.Abs(float64(last)) > 1e-3 {
		t.Errorf("offset not removed, last sample = %f", last)
	}
}

func TestDecodeMaxDuration(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.MaxDuration = 500 * time.Millisecond
	cfg.ChunkSize = 1000

	audio, err := NewDecoder(cfg).DecodeBytes(pcm16WAV(t, 8000, 1, sineInt16(16000, 220, 8000, 0.3)))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if len(audio.PCM) != 4000 {
		t.Errorf("expected 4000 samples, got %d", len(audio.PCM))
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempt.wav")
	if err := os.WriteFile(path, pcm16WAV(t, 8000, 1, sineInt16(800, 220, 8000, 0.3)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	audio, err := NewDecoder(nil).DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if audio.Metadata.Path != path {
		t.Errorf("expected path %q, got %q", path, audio.Metadata.Path)
	}

	if _, err := NewDecoder(nil).DecodeFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDecodeRejectsGarbageBytes(t *testing.T) {
	if _, err := NewDecoder(nil).DecodeBytes([]byte("definitely not a wav file at all")); err == nil {
		t.Error("expected an error for non-WAV input")
	}
	if _, err := NewDecoder(nil).DecodeBytes(nil); err == nil {
		t.Error("expected an error for empty input")
	}
}

func TestReverse(t *testing.T) {
	pcm := []float32{1, 2, 3, 4}
	got := Reverse(pcm)

	want := []float32{4, 3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Reverse = %v, want %v", got, want)
		}
	}
	if pcm[0] != 1 {
		t.Error("Reverse modified its input")
	}

	audio := &AudioData{PCM: []float32{1, 2, 3}, Metadata: &FileMetadata{}}
	audio.Reverse()
	if audio.PCM[0] != 3 || !audio.Metadata.Reversed {
		t.Errorf("AudioData.Reverse: got %v, reversed=%v", audio.PCM, audio.Metadata.Reversed)
	}
}

func TestDownmixDropsPartialFrame(t *testing.T) {
	got := Downmix([]float32{1, 3, 5}, 2)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Downmix = %v, want [2]", got)
	}
}
