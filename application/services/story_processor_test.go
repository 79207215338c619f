package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
	"storybook-pipeline/infrastructure/adapters"
)

type fakeSceneProcessor struct {
	mu        sync.Mutex
	starts    map[int]time.Time
	running   int
	peak      int
	duration  time.Duration
	errs      map[int]error
	onProcess func(ctx context.Context, params inbound.ProcessSceneParams)
}

func newFakeSceneProcessor(duration time.Duration) *fakeSceneProcessor {
	return &fakeSceneProcessor{
		starts:   make(map[int]time.Time),
		duration: duration,
	}
}

func (f *fakeSceneProcessor) ProcessScene(ctx context.Context, params inbound.ProcessSceneParams) error {
	f.mu.Lock()
	f.starts[params.PageNumber] = time.Now()
	f.running++
	if f.running > f.peak {
		f.peak = f.running
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.running--
		f.mu.Unlock()
	}()

	if f.onProcess != nil {
		f.onProcess(ctx, params)
	}

	if f.duration > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.duration):
		}
	}
	return f.errs[params.PageNumber]
}

func multiPageStory(storyID string, pages int) domain.Story {
	story := domain.Story{ID: storyID, Title: "Test Story"}
	for i := 1; i <= pages; i++ {
		story.Pages = append(story.Pages, domain.Page{
			PageNumber: i,
			Timeline:   []domain.Beat{{Type: domain.NarrationBeat, Text: "line"}},
		})
	}
	return story
}

type storyProcessorFixture struct {
	scenes    *fakeSceneProcessor
	storyRepo *fakeStoryRepo
	state     outbound.StoryStatePort
	processor inbound.StoryProcessorPort
	pool      *ants.Pool
}

func newStoryProcessorFixture(t *testing.T, story domain.Story, scenes *fakeSceneProcessor, stagger time.Duration) *storyProcessorFixture {
	t.Helper()
	logger := adapters.NewZerologWrapper()
	state := adapters.NewMemoryStateStore(time.Hour, logger)
	require.NoError(t, state.CreateStory(context.Background(), story))

	pool, err := ants.NewPool(50)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	storyRepo := &fakeStoryRepo{}
	processor := NewStoryProcessor(scenes, storyRepo, state, pool, logger,
		&config.PipelineConfig{PageStagger: stagger})

	return &storyProcessorFixture{
		scenes:    scenes,
		storyRepo: storyRepo,
		state:     state,
		processor: processor,
		pool:      pool,
	}
}

func TestProcessStory_AllScenesSucceed(t *testing.T) {
	story := multiPageStory("story-ok", 3)
	f := newStoryProcessorFixture(t, story, newFakeSceneProcessor(10*time.Millisecond), 0)

	err := f.processor.ProcessStory(context.Background(), inbound.ProcessStoryParams{
		StoryID: "story-ok",
		Story:   story,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(context.Background(), "story-ok")
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusCompleted, state.Status)
	assert.Equal(t, 1.0, state.Progress)
	assert.Equal(t, domain.StoryStatusCompleted, f.storyRepo.lastStatus())
}

func TestProcessStory_StaggeredStartsRunConcurrently(t *testing.T) {
	const stagger = 50 * time.Millisecond
	story := multiPageStory("story-stagger", 4)
	scenes := newFakeSceneProcessor(200 * time.Millisecond)
	f := newStoryProcessorFixture(t, story, scenes, stagger)

	start := time.Now()
	err := f.processor.ProcessStory(context.Background(), inbound.ProcessStoryParams{
		StoryID: "story-stagger",
		Story:   story,
	})
	require.NoError(t, err)
	elapsed := time.Since(start)

	// Page i is delayed by (i-1) * stagger before it starts.
	for page := 1; page <= 4; page++ {
		offset := scenes.starts[page].Sub(start)
		assert.GreaterOrEqual(t, offset, time.Duration(page-1)*stagger,
			"page %d started before its stagger delay", page)
	}

	// The stagger offsets starts only: the scenes overlap instead of running
	// one after another.
	assert.GreaterOrEqual(t, scenes.peak, 2)
	assert.Less(t, elapsed, 4*200*time.Millisecond)
}

func TestProcessStory_PageFailureYieldsCompletedWithErrors(t *testing.T) {
	story := multiPageStory("story-partial", 3)
	scenes := newFakeSceneProcessor(0)
	f := newStoryProcessorFixture(t, story, scenes, 0)
	// Mirror what the scene processor does on a provider failure.
	scenes.onProcess = func(ctx context.Context, params inbound.ProcessSceneParams) {
		if params.PageNumber == 2 {
			f.state.RecordPageError(ctx, "story-partial", 2, "sfx", "provider unavailable")
		} else {
			f.state.SetPageStatus(ctx, "story-partial", params.PageNumber, domain.PageStatusCompleted)
		}
	}

	err := f.processor.ProcessStory(context.Background(), inbound.ProcessStoryParams{
		StoryID: "story-partial",
		Story:   story,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(context.Background(), "story-partial")
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusCompletedWithErrors, state.Status)
	assert.Equal(t, domain.PageStatusFailed, state.Page(2).Status)
	assert.Equal(t, domain.PageStatusCompleted, state.Page(1).Status)
}

func TestProcessStory_SceneCrashFailsStory(t *testing.T) {
	story := multiPageStory("story-crash", 2)
	scenes := newFakeSceneProcessor(0)
	scenes.errs = map[int]error{2: errProviderDown}
	f := newStoryProcessorFixture(t, story, scenes, 0)

	err := f.processor.ProcessStory(context.Background(), inbound.ProcessStoryParams{
		StoryID: "story-crash",
		Story:   story,
	})
	require.ErrorIs(t, err, errProviderDown)

	state, err := f.state.GetStory(context.Background(), "story-crash")
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusFailed, state.Status)
	assert.Equal(t, domain.StoryStatusFailed, f.storyRepo.lastStatus())
}

func TestProcessStory_CancellationMarksStoryCancelled(t *testing.T) {
	story := multiPageStory("story-cancel", 3)
	scenes := newFakeSceneProcessor(500 * time.Millisecond)
	f := newStoryProcessorFixture(t, story, scenes, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := f.processor.ProcessStory(ctx, inbound.ProcessStoryParams{
		StoryID: "story-cancel",
		Story:   story,
	})
	require.NoError(t, err)

	state, err := f.state.GetStory(context.Background(), "story-cancel")
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusCancelled, state.Status)
	assert.Equal(t, domain.StoryStatusCancelled, f.storyRepo.lastStatus())
}
