package services

import (
	"context"
	"errors"
	"sync"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

var errProviderDown = errors.New("provider unavailable")

type fakeSynthesizer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, req outbound.SynthesizeSpeechRequest) (*outbound.SynthesizeSpeechResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Text)
	f.mu.Unlock()
	if err, ok := f.fail[req.Text]; ok {
		return nil, err
	}
	return &outbound.SynthesizeSpeechResult{
		Audio:   []byte("speech:" + req.Text),
		VoiceID: req.VoiceID,
	}, nil
}

type fakeSoundEffects struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSoundEffects) SynthesizeEffect(_ context.Context, description string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, description)
	f.mu.Unlock()
	if err, ok := f.fail[description]; ok {
		return nil, err
	}
	return []byte("sfx:" + description), nil
}

type fakeIllustrator struct {
	mu       sync.Mutex
	requests []outbound.IllustrateRequest
	err      error
}

func (f *fakeIllustrator) Illustrate(_ context.Context, req outbound.IllustrateRequest) (*outbound.IllustrateResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &outbound.IllustrateResult{ImageURL: "https://img.invalid/page.jpg"}, nil
}

type fakeImageFetcher struct {
	err error
}

func (f *fakeImageFetcher) FetchBase64(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "b64:" + url, nil
}

type fakeAssetStore struct {
	mu       sync.Mutex
	audio    map[string][]byte
	audioErr error
}

func (f *fakeAssetStore) PersistAudio(_ context.Context, storyID string, pageNumber int, buffer []byte, _ string) (string, error) {
	if f.audioErr != nil {
		return "", f.audioErr
	}
	f.mu.Lock()
	if f.audio == nil {
		f.audio = make(map[string][]byte)
	}
	key := storyID
	f.audio[key] = buffer
	f.mu.Unlock()
	return "https://assets.invalid/audio.mp3", nil
}

func (f *fakeAssetStore) PersistImage(_ context.Context, _ string, _ int, _ []byte, _ string) (string, error) {
	return "https://assets.invalid/image.jpg", nil
}

type fakeStoryRepo struct {
	mu       sync.Mutex
	statuses []domain.StoryStatus
}

func (f *fakeStoryRepo) SaveStory(context.Context, domain.Story) error { return nil }

func (f *fakeStoryRepo) UpdatePage(context.Context, string, int, outbound.PageAssetURLs) error {
	return nil
}

func (f *fakeStoryRepo) SetStoryStatus(_ context.Context, _ string, status domain.StoryStatus) error {
	f.mu.Lock()
	f.statuses = append(f.statuses, status)
	f.mu.Unlock()
	return nil
}

func (f *fakeStoryRepo) GetStory(context.Context, string) (*domain.Story, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeStoryRepo) lastStatus() domain.StoryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return ""
	}
	return f.statuses[len(f.statuses)-1]
}

// fakeAudioEngine concatenates byte slices directly so mixed output stays
// inspectable.
type fakeAudioEngine struct {
	concatErr error
	fadeErr   error
}

func (f *fakeAudioEngine) Concatenate(_ context.Context, buffers [][]byte) ([]byte, error) {
	if f.concatErr != nil {
		return nil, f.concatErr
	}
	var out []byte
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out, nil
}

func (f *fakeAudioEngine) Fade(_ context.Context, buffer []byte, _ outbound.FadeEnvelope) ([]byte, error) {
	if f.fadeErr != nil {
		return nil, f.fadeErr
	}
	return append([]byte("faded:"), buffer...), nil
}
