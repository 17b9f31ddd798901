package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mjibson/go-dsp/wav"

	"github.com/RyanBlaney/sonido-reverso/algorithms/common"
	"github.com/RyanBlaney/sonido-reverso/algorithms/filters"
	"github.com/RyanBlaney/sonido-reverso/logging"
)

// AudioData is a decoded recording, downmixed to mono
type AudioData struct {
	PCM        []float32     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // channel count of the source before downmixing
	Duration   time.Duration `json:"duration"`
	Metadata   *FileMetadata `json:"metadata,omitempty"`
}

// FileMetadata describes where the audio came from
type FileMetadata struct {
	Path          string `json:"path,omitempty"`
	Format        string `json:"format"`
	BitsPerSample int    `json:"bits_per_sample"`
	Reversed      bool   `json:"reversed"`
	Resampled     bool   `json:"resampled"`
	DCRemoved     bool   `json:"dc_removed"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int                   `json:"target_sample_rate"` // 0 keeps the source rate
	ResampleMethod   common.ResampleMethod `json:"resample_method"`
	MaxDuration      time.Duration         `json:"max_duration"` // 0 means no limit
	ChunkSize        int                   `json:"chunk_size"`   // samples per read
	DCCutoff         float64               `json:"dc_cutoff"`    // Hz; 0 leaves any DC offset in place
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
		ResampleMethod:   common.ResampleCubic,
		MaxDuration:      2 * time.Minute,
		ChunkSize:        4096,
	}
}

// Decoder reads PCM WAV recordings
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 4096
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile decodes a WAV file
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	audio, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	audio.Metadata.Path = filename
	return audio, nil
}

// DecodeBytes decodes a WAV held in memory
func (d *Decoder) DecodeBytes(data []byte) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio data")
	}
	return d.Decode(bytes.NewReader(data))
}

// Decode reads a whole WAV stream, averages its channels to mono and, when
// a target rate is configured, resamples it
func (d *Decoder) Decode(r io.Reader) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "Decode",
	})

	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	channels := int(w.NumChannels)
	sampleRate := int(w.SampleRate)
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid WAV header: %d channels at %d Hz", channels, sampleRate)
	}

	logger.Debug("WAV header read", logging.Fields{
		"sample_rate":     sampleRate,
		"channels":        channels,
		"bits_per_sample": w.BitsPerSample,
	})

	limit := -1
	if d.config.MaxDuration > 0 {
		limit = int(d.config.MaxDuration.Seconds()*float64(sampleRate)) * channels
	}

	var interleaved []float32
	for limit < 0 || len(interleaved) < limit {
		chunk, err := w.ReadFloats(d.config.ChunkSize)
		if errors.Is(err, io.EOF) || (err == nil && len(chunk) == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read samples: %w", err)
		}
		interleaved = append(interleaved, chunk...)
	}
	if limit >= 0 && len(interleaved) > limit {
		logger.Warn("Recording truncated to the maximum duration", logging.Fields{
			"max_duration": d.config.MaxDuration.String(),
		})
		interleaved = interleaved[:limit]
	}

	pcm := Downmix(interleaved, channels)
	meta := &FileMetadata{Format: "wav", BitsPerSample: int(w.BitsPerSample)}

	if d.config.DCCutoff > 0 {
		dc := filters.NewDCRemovalWithCutoff(sampleRate, d.config.DCCutoff)
		pcm = toFloat32(dc.ProcessBuffer(common.ToFloat64(pcm)))
		meta.DCRemoved = true
	}

	if target := d.config.TargetSampleRate; target > 0 && target != sampleRate {
		pcm = toFloat32(common.Resample(common.ToFloat64(pcm), sampleRate, target, d.config.ResampleMethod))
		logger.Debug("Resampled recording", logging.Fields{
			"from": sampleRate,
			"to":   target,
		})
		sampleRate = target
		meta.Resampled = true
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
		Metadata:   meta,
	}, nil
}

// Downmix averages interleaved frames of the given channel count to mono.
// A trailing partial frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return slices.Clone(interleaved)
	}

	mono := make([]float32, len(interleaved)/channels)
	for i := range mono {
		var sum float32
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

// Reverse returns pcm played backwards
func Reverse(pcm []float32) []float32 {
	out := slices.Clone(pcm)
	slices.Reverse(out)
	return out
}

// Reverse plays the recording backwards in place
func (a *AudioData) Reverse() {
	slices.Reverse(a.PCM)
	if a.Metadata != nil {
		a.Metadata.Reversed = !a.Metadata.Reversed
	}
}

func toFloat32(pcm []float64) []float32 {
	out := make([]float32, len(pcm))
	for i, v := range pcm {
		out[i] = float32(v)
	}
	return out
}
