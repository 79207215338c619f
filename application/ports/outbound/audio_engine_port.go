package outbound

import "context"

// FadeEnvelope describes a linear amplitude ramp in seconds at the head and
// tail of a clip.
type FadeEnvelope struct {
	FadeIn  float64
	FadeOut float64
}

// AudioEnginePort is the codec engine behind the audio post-processor. Any
// media-processing backend capable of decode/concat/fade/encode satisfies it.
type AudioEnginePort interface {
	// Concatenate joins the buffers in order into a single clip re-encoded at
	// a fixed bitrate and sample rate.
	Concatenate(ctx context.Context, buffers [][]byte) ([]byte, error)
	// Fade applies the envelope to a single clip.
	Fade(ctx context.Context, buffer []byte, envelope FadeEnvelope) ([]byte, error)
}
