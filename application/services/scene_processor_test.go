package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
	"storybook-pipeline/infrastructure/adapters"
)

const narratorVoice = "EkK5I93UQWFDigLMpZcX"

type sceneFixture struct {
	synthesizer  *fakeSynthesizer
	soundEffects *fakeSoundEffects
	illustrator  *fakeIllustrator
	imageFetcher *fakeImageFetcher
	assetStore   *fakeAssetStore
	storyRepo    *fakeStoryRepo
	state        outbound.StoryStatePort
	processor    inbound.SceneProcessorPort
}

func newSceneFixture(t *testing.T, story domain.Story) *sceneFixture {
	t.Helper()
	logger := adapters.NewZerologWrapper()
	state := adapters.NewMemoryStateStore(time.Hour, logger)
	require.NoError(t, state.CreateStory(context.Background(), story))

	f := &sceneFixture{
		synthesizer:  &fakeSynthesizer{},
		soundEffects: &fakeSoundEffects{},
		illustrator:  &fakeIllustrator{},
		imageFetcher: &fakeImageFetcher{},
		assetStore:   &fakeAssetStore{},
		storyRepo:    &fakeStoryRepo{},
		state:        state,
	}
	mixer := NewAudioMixer(&fakeAudioEngine{}, logger)
	f.processor = NewSceneProcessor(f.synthesizer, f.soundEffects, f.illustrator, f.imageFetcher,
		mixer, f.assetStore, f.storyRepo, state,
		logger, &config.PipelineConfig{EnableAudio: true, EnableImages: true}, narratorVoice)
	return f
}

func storyWithTimeline(storyID string, timeline []domain.Beat) domain.Story {
	return domain.Story{
		ID:    storyID,
		Title: "Test Story",
		Pages: []domain.Page{{PageNumber: 1, ImagePrompt: "a cozy scene", Timeline: timeline}},
	}
}

func TestProcessScene_HappyPath(t *testing.T) {
	timeline := []domain.Beat{
		{Type: domain.NarrationBeat, Text: "The forest slept."},
		{Type: domain.CharacterBeat, Name: "Milo", Text: "Who goes there?"},
		{Type: domain.SfxBeat, Description: "Rustling leaves and creaking branches"},
	}
	f := newSceneFixture(t, storyWithTimeline("story-1", timeline))
	ctx := context.Background()

	err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:         "story-1",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "a cozy scene",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(ctx, "story-1")
	require.NoError(t, err)
	page := state.Page(1)
	require.NotNil(t, page)

	assert.Equal(t, domain.PageStatusCompleted, page.Status)
	assert.Empty(t, page.Errors)
	assert.Equal(t, "https://assets.invalid/audio.mp3", page.Assets.Audio)
	assert.Equal(t, "https://img.invalid/page.jpg", page.Assets.Image)

	// Spoken lines come before the sound effect and stay in timeline order.
	assert.Equal(t, []string{"The forest slept.", "Who goes there?"}, f.synthesizer.calls)
	mixed := string(f.assetStore.audio["story-1"])
	assert.Equal(t, "speech:The forest slept.speech:Who goes there?faded:sfx:Rustling leaves and creaking branches", mixed)
}

func TestProcessScene_SfxFailureContinues(t *testing.T) {
	timeline := []domain.Beat{
		{Type: domain.NarrationBeat, Text: "Thunder gathered."},
		{Type: domain.SfxBeat, Description: "Distant thunder rumbling"},
		{Type: domain.CharacterBeat, Name: "Pip", Text: "We should hurry."},
	}
	f := newSceneFixture(t, storyWithTimeline("story-2", timeline))
	f.soundEffects.fail = map[string]error{"Distant thunder rumbling": errProviderDown}
	ctx := context.Background()

	err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:         "story-2",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "a storm",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(ctx, "story-2")
	require.NoError(t, err)
	page := state.Page(1)
	require.NotNil(t, page)

	assert.Equal(t, domain.PageStatusFailed, page.Status)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, "sfx", page.Errors[0].Step)

	// The failure is isolated: the later line still renders and the mixed
	// audio plus illustration are persisted.
	assert.Equal(t, []string{"Thunder gathered.", "We should hurry."}, f.synthesizer.calls)
	assert.Equal(t, "https://assets.invalid/audio.mp3", page.Assets.Audio)
	assert.Equal(t, "https://img.invalid/page.jpg", page.Assets.Image)
}

func TestProcessScene_SynthesisFailureRecordsBeatStep(t *testing.T) {
	timeline := []domain.Beat{
		{Type: domain.NarrationBeat, Text: "All was well."},
		{Type: domain.CharacterBeat, Name: "Milo", Text: "Is it though?"},
	}
	f := newSceneFixture(t, storyWithTimeline("story-3", timeline))
	f.synthesizer.fail = map[string]error{"Is it though?": errProviderDown}
	ctx := context.Background()

	err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:         "story-3",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "a clearing",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(ctx, "story-3")
	require.NoError(t, err)
	page := state.Page(1)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, "character", page.Errors[0].Step)
	assert.Equal(t, domain.PageStatusFailed, page.Status)
	// The narration that succeeded is still mixed and saved.
	assert.Equal(t, "speech:All was well.", string(f.assetStore.audio["story-3"]))
}

func TestProcessScene_EmptySfxSkipped(t *testing.T) {
	timeline := []domain.Beat{
		{Type: domain.SfxBeat, Description: ""},
		{Type: domain.NarrationBeat, Text: "Silence, then."},
	}
	f := newSceneFixture(t, storyWithTimeline("story-4", timeline))
	ctx := context.Background()

	err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:         "story-4",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "quiet woods",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)

	assert.Empty(t, f.soundEffects.calls)
	state, err := f.state.GetStory(ctx, "story-4")
	require.NoError(t, err)
	assert.Equal(t, domain.PageStatusCompleted, state.Page(1).Status)
}

func TestProcessScene_IllustrationFailure(t *testing.T) {
	timeline := []domain.Beat{{Type: domain.NarrationBeat, Text: "A line."}}
	f := newSceneFixture(t, storyWithTimeline("story-5", timeline))
	f.illustrator.err = errProviderDown
	ctx := context.Background()

	err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:         "story-5",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "a scene",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(ctx, "story-5")
	require.NoError(t, err)
	page := state.Page(1)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, domain.IllustrationStep, page.Errors[0].Step)
	assert.Equal(t, domain.PageStatusFailed, page.Status)
	// Audio already persisted before illustration failed.
	assert.Equal(t, "https://assets.invalid/audio.mp3", page.Assets.Audio)
}

func TestProcessScene_ReferenceImageCapturedOnce(t *testing.T) {
	timeline := []domain.Beat{{Type: domain.NarrationBeat, Text: "A line."}}
	story := domain.Story{
		ID:    "story-6",
		Title: "Test Story",
		Pages: []domain.Page{
			{PageNumber: 1, ImagePrompt: "first scene", Timeline: timeline},
			{PageNumber: 2, ImagePrompt: "second scene", Timeline: timeline},
		},
	}
	f := newSceneFixture(t, story)
	ctx := context.Background()

	for page := 1; page <= 2; page++ {
		err := f.processor.ProcessScene(ctx, inbound.ProcessSceneParams{
			StoryID:         "story-6",
			PageNumber:      page,
			Timeline:        timeline,
			ImagePrompt:     "scene",
			NarratorVoiceID: narratorVoice,
		})
		require.NoError(t, err)
	}

	require.Len(t, f.illustrator.requests, 2)
	// First request has no reference yet, the second carries the captured one.
	assert.Empty(t, f.illustrator.requests[0].ReferenceImages)
	assert.Equal(t, []string{"b64:https://img.invalid/page.jpg"}, f.illustrator.requests[1].ReferenceImages)
}

func TestProcessScene_AudioDisabled(t *testing.T) {
	timeline := []domain.Beat{{Type: domain.NarrationBeat, Text: "Never spoken."}}
	story := storyWithTimeline("story-7", timeline)
	logger := adapters.NewZerologWrapper()
	state := adapters.NewMemoryStateStore(time.Hour, logger)
	require.NoError(t, state.CreateStory(context.Background(), story))

	synthesizer := &fakeSynthesizer{}
	processor := NewSceneProcessor(synthesizer, &fakeSoundEffects{}, &fakeIllustrator{}, &fakeImageFetcher{},
		NewAudioMixer(&fakeAudioEngine{}, logger), &fakeAssetStore{}, &fakeStoryRepo{}, state,
		logger, &config.PipelineConfig{EnableAudio: false, EnableImages: true}, narratorVoice)

	err := processor.ProcessScene(context.Background(), inbound.ProcessSceneParams{
		StoryID:         "story-7",
		PageNumber:      1,
		Timeline:        timeline,
		ImagePrompt:     "a scene",
		NarratorVoiceID: narratorVoice,
	})
	require.NoError(t, err)
	assert.Empty(t, synthesizer.calls)

	storyState, err := state.GetStory(context.Background(), "story-7")
	require.NoError(t, err)
	assert.Equal(t, domain.PageStatusCompleted, storyState.Page(1).Status)
}
