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
	"storybook-pipeline/domain"
	"storybook-pipeline/infrastructure/adapters"
	"storybook-pipeline/mock"
)

type blockingStoryProcessor struct {
	mu      sync.Mutex
	started chan string
	result  map[string]error
}

func (p *blockingStoryProcessor) ProcessStory(ctx context.Context, params inbound.ProcessStoryParams) error {
	p.started <- params.StoryID
	<-ctx.Done()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil
	}
	return p.result[params.StoryID]
}

func newBuilderFixture(t *testing.T, processor inbound.StoryProcessorPort) (inbound.StoryBuilderPort, outbound.StoryStatePort) {
	t.Helper()
	logger := adapters.NewZerologWrapper()
	state := adapters.NewMemoryStateStore(time.Hour, logger)

	pool, err := ants.NewPool(10)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	builder := NewStoryBuilder(mock.ScriptGenerator{}, processor, &fakeStoryRepo{}, state, pool, logger)
	return builder, state
}

func TestBuildStory_GeneratesScriptAndRegistersState(t *testing.T) {
	processor := &blockingStoryProcessor{started: make(chan string, 1)}
	builder, state := newBuilderFixture(t, processor)

	res, err := builder.BuildStory(context.Background(), inbound.BuildStoryParams{
		Prompt:    "a lantern in the hollow",
		PageCount: 3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.StoryID)
	assert.NotEmpty(t, res.Title)

	select {
	case started := <-processor.started:
		assert.Equal(t, res.StoryID, started)
	case <-time.After(time.Second):
		t.Fatal("pipeline task never started")
	}

	storyState, err := state.GetStory(context.Background(), res.StoryID)
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusProcessing, storyState.Status)
	assert.Len(t, storyState.Pages, 3)
	for i, page := range storyState.Pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.Equal(t, domain.PageStatusPending, page.Status)
	}

	assert.True(t, builder.TaskRunning(res.StoryID))
	builder.CancelStory(context.Background(), res.StoryID)
}

func TestBuildStory_SuppliedScriptSkipsGeneration(t *testing.T) {
	processor := &blockingStoryProcessor{started: make(chan string, 1)}
	builder, state := newBuilderFixture(t, processor)

	script := &domain.Story{
		Title: "Handwritten",
		Pages: []domain.Page{
			{Timeline: []domain.Beat{{Type: domain.NarrationBeat, Text: "line"}}},
			{Timeline: []domain.Beat{{Type: domain.NarrationBeat, Text: "line"}}},
		},
	}

	res, err := builder.BuildStory(context.Background(), inbound.BuildStoryParams{Script: script})
	require.NoError(t, err)
	assert.Equal(t, "Handwritten", res.Title)

	storyState, err := state.GetStory(context.Background(), res.StoryID)
	require.NoError(t, err)
	// Page numbers are backfilled from position when the script omits them.
	require.Len(t, storyState.Pages, 2)
	assert.Equal(t, 1, storyState.Pages[0].PageNumber)
	assert.Equal(t, 2, storyState.Pages[1].PageNumber)

	<-processor.started
	builder.CancelStory(context.Background(), res.StoryID)
}

func TestBuildStory_RequiresPromptOrScript(t *testing.T) {
	processor := &blockingStoryProcessor{started: make(chan string, 1)}
	builder, _ := newBuilderFixture(t, processor)

	_, err := builder.BuildStory(context.Background(), inbound.BuildStoryParams{})
	assert.Error(t, err)
}

func TestCancelStory(t *testing.T) {
	processor := &blockingStoryProcessor{started: make(chan string, 1)}
	builder, _ := newBuilderFixture(t, processor)

	res, err := builder.BuildStory(context.Background(), inbound.BuildStoryParams{Prompt: "a tale"})
	require.NoError(t, err)
	<-processor.started

	assert.True(t, builder.CancelStory(context.Background(), res.StoryID))

	// The task settles after cancellation and a second cancel is rejected.
	require.Eventually(t, func() bool {
		return !builder.TaskRunning(res.StoryID)
	}, time.Second, 10*time.Millisecond)
	assert.False(t, builder.CancelStory(context.Background(), res.StoryID))

	assert.False(t, builder.CancelStory(context.Background(), "no-such-story"))
}
