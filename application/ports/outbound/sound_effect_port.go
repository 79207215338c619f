package outbound

import "context"

type SoundEffectPort interface {
	SynthesizeEffect(ctx context.Context, description string) ([]byte, error)
}
