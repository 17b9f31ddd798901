package scoring

import "github.com/RyanBlaney/sonido-reverso/scoring/config"

// Engine identifies a scoring strategy
type Engine string

const (
	EngineSpeech  Engine = "speech"
	EngineSinging Engine = "singing"
)

// Route maps a classified mode to the engine that scores it. Unknown goes to
// the speech engine, matching the classifier's own fallback.
func Route(mode config.VocalMode) Engine {
	switch mode {
	case config.ModeSinging:
		return EngineSinging
	default:
		return EngineSpeech
	}
}
