package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/infrastructure/adapters"
)

// batchLimitedEngine refuses concatenations above a pair at a time, which
// forces the pairwise fallback path.
type batchLimitedEngine struct {
	fakeAudioEngine
	maxBatch int
}

func (e *batchLimitedEngine) Concatenate(ctx context.Context, buffers [][]byte) ([]byte, error) {
	if e.maxBatch > 0 && len(buffers) > e.maxBatch {
		return nil, errors.New("too many inputs")
	}
	return e.fakeAudioEngine.Concatenate(ctx, buffers)
}

func TestMixSequential(t *testing.T) {
	logger := adapters.NewZerologWrapper()
	ctx := context.Background()

	t.Run("no buffers yields nil", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{}, logger)
		assert.Nil(t, mixer.MixSequential(ctx, nil))
	})

	t.Run("single buffer passes through untouched", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{concatErr: errors.New("must not be called")}, logger)
		assert.Equal(t, []byte("solo"), mixer.MixSequential(ctx, [][]byte{[]byte("solo")}))
	})

	t.Run("buffers concatenate in order", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{}, logger)
		mixed := mixer.MixSequential(ctx, [][]byte{[]byte("a"), []byte("b"), []byte("c")})
		assert.Equal(t, []byte("abc"), mixed)
	})

	t.Run("pairwise fallback preserves order", func(t *testing.T) {
		mixer := NewAudioMixer(&batchLimitedEngine{maxBatch: 2}, logger)
		mixed := mixer.MixSequential(ctx, [][]byte{[]byte("a"), []byte("b"), []byte("c")})
		assert.Equal(t, []byte("abc"), mixed)
	})

	t.Run("total failure degrades to first buffer", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{concatErr: errors.New("engine down")}, logger)
		mixed := mixer.MixSequential(ctx, [][]byte{[]byte("first"), []byte("second")})
		assert.Equal(t, []byte("first"), mixed)
	})
}

func TestApplyFade(t *testing.T) {
	logger := adapters.NewZerologWrapper()
	ctx := context.Background()

	t.Run("empty clip passes through", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{fadeErr: errors.New("must not be called")}, logger)
		assert.Empty(t, mixer.ApplyFade(ctx, nil, "thunder"))
	})

	t.Run("fade applied", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{}, logger)
		assert.Equal(t, []byte("faded:clip"), mixer.ApplyFade(ctx, []byte("clip"), "thunder"))
	})

	t.Run("fade failure keeps original clip", func(t *testing.T) {
		mixer := NewAudioMixer(&fakeAudioEngine{fadeErr: errors.New("engine down")}, logger)
		assert.Equal(t, []byte("clip"), mixer.ApplyFade(ctx, []byte("clip"), "thunder"))
	})
}

var _ outbound.AudioEnginePort = (*batchLimitedEngine)(nil)
