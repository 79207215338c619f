package inbound

import "context"

// AudioMixerPort is the audio post-processor. Both operations degrade rather
// than fail: a fade that cannot be applied returns the input unchanged, and a
// concatenation that cannot be completed falls back to the first buffer.
type AudioMixerPort interface {
	// MixSequential concatenates the buffers in order. Zero buffers yield nil,
	// a single buffer is returned unchanged.
	MixSequential(ctx context.Context, buffers [][]byte) []byte
	// ApplyFade shapes a sound-effect clip with the envelope classified from
	// its description.
	ApplyFade(ctx context.Context, buffer []byte, description string) []byte
}
