package services

import (
	"context"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
)

type audioMixer struct {
	engine outbound.AudioEnginePort
	logger outbound.LoggerPort
}

func NewAudioMixer(engine outbound.AudioEnginePort, logger outbound.LoggerPort) inbound.AudioMixerPort {
	return &audioMixer{
		engine: engine,
		logger: logger,
	}
}

// MixSequential concatenates the buffers in order. When the engine cannot
// complete the concatenation in one pass it retries pairwise, and when that
// fails too it degrades to the first buffer alone instead of failing the
// caller.
func (a *audioMixer) MixSequential(ctx context.Context, buffers [][]byte) []byte {
	if len(buffers) == 0 {
		return nil
	}
	if len(buffers) == 1 {
		return buffers[0]
	}

	mixed, err := a.engine.Concatenate(ctx, buffers)
	if err == nil {
		return mixed
	}
	a.logger.ErrorWithFields(err, "primary audio concatenation failed, retrying pairwise", map[string]interface{}{
		"segments": len(buffers),
	})

	if mixed, ok := a.concatenatePairwise(ctx, buffers); ok {
		return mixed
	}

	a.logger.Warn("all concatenation strategies failed, falling back to first segment only")
	return buffers[0]
}

// concatenatePairwise folds the buffers two at a time, replacing the running
// result after every merge.
func (a *audioMixer) concatenatePairwise(ctx context.Context, buffers [][]byte) ([]byte, bool) {
	result := buffers[0]
	for _, next := range buffers[1:] {
		merged, err := a.engine.Concatenate(ctx, [][]byte{result, next})
		if err != nil {
			a.logger.Error(err, "pairwise audio concatenation failed")
			return nil, false
		}
		result = merged
	}
	return result, true
}

// ApplyFade shapes a sound-effect clip with the envelope classified from its
// description. A clip the engine cannot process comes back unchanged; fade
// failure never aborts the pipeline.
func (a *audioMixer) ApplyFade(ctx context.Context, buffer []byte, description string) []byte {
	if len(buffer) == 0 {
		return buffer
	}

	envelope := ClassifyFade(description)
	faded, err := a.engine.Fade(ctx, buffer, envelope)
	if err != nil {
		a.logger.WarnWithFields("failed to apply fade envelope, keeping original clip", map[string]interface{}{
			"description": description,
			"error":       err.Error(),
		})
		return buffer
	}
	return faded
}
