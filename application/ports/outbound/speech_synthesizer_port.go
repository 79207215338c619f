package outbound

import (
	"context"

	"storybook-pipeline/domain"
)

type SynthesizeSpeechRequest struct {
	Text          string
	VoiceID       string
	VoiceSettings *domain.VoiceSettings
}

type SynthesizeSpeechResult struct {
	Audio   []byte
	VoiceID string
}

type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, req SynthesizeSpeechRequest) (*SynthesizeSpeechResult, error)
}
