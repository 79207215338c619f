package mock

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

// Offline stand-ins for the external providers. They return deterministic
// payloads after a short delay so the full pipeline can be exercised without
// API keys or network access.

const mockDelay = 150 * time.Millisecond

func wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mockDelay):
		return nil
	}
}

type SpeechSynthesizer struct{}

func (SpeechSynthesizer) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) (*outbound.SynthesizeSpeechResult, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}
	return &outbound.SynthesizeSpeechResult{
		Audio:   []byte("mock-speech:" + req.Text),
		VoiceID: req.VoiceID,
	}, nil
}

type SoundEffects struct{}

func (SoundEffects) SynthesizeEffect(ctx context.Context, description string) ([]byte, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}
	return []byte("mock-sfx:" + description), nil
}

type Illustrator struct{}

func (Illustrator) Illustrate(ctx context.Context, req outbound.IllustrateRequest) (*outbound.IllustrateResult, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}
	return &outbound.IllustrateResult{
		ImageURL: fmt.Sprintf("https://mock.invalid/story/%s/page/%d.jpg", req.StoryID, req.PageNumber),
	}, nil
}

type ImageFetcher struct{}

func (ImageFetcher) FetchBase64(_ context.Context, url string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(url)), nil
}

// AudioEngine mixes by concatenating raw bytes, which keeps fade and concat
// observable in tests without ffmpeg.
type AudioEngine struct{}

func (AudioEngine) Concatenate(ctx context.Context, buffers [][]byte) ([]byte, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}
	var out []byte
	for _, buffer := range buffers {
		out = append(out, buffer...)
	}
	return out, nil
}

func (AudioEngine) Fade(ctx context.Context, buffer []byte, _ outbound.FadeEnvelope) ([]byte, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}
	return buffer, nil
}

type AssetStore struct{}

func (AssetStore) PersistAudio(_ context.Context, storyID string, pageNumber int, _ []byte, _ string) (string, error) {
	return fmt.Sprintf("https://mock.invalid/assets/%s/page/%d/audio.mp3", storyID, pageNumber), nil
}

func (AssetStore) PersistImage(_ context.Context, storyID string, pageNumber int, _ []byte, _ string) (string, error) {
	return fmt.Sprintf("https://mock.invalid/assets/%s/page/%d/illustration.jpg", storyID, pageNumber), nil
}

type StoryRepository struct{}

func (StoryRepository) SaveStory(context.Context, domain.Story) error {
	return nil
}

func (StoryRepository) UpdatePage(context.Context, string, int, outbound.PageAssetURLs) error {
	return nil
}

func (StoryRepository) SetStoryStatus(context.Context, string, domain.StoryStatus) error {
	return nil
}

func (StoryRepository) GetStory(_ context.Context, storyID string) (*domain.Story, error) {
	return nil, fmt.Errorf("story %s not found", storyID)
}
