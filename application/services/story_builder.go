package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

// storyTask is the supervised handle of one story's background pipeline run.
type storyTask struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (t *storyTask) finish(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

func (t *storyTask) running() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

type storyBuilder struct {
	scriptGenerator outbound.ScriptGeneratorPort
	storyProcessor  inbound.StoryProcessorPort
	storyRepo       outbound.StoryRepositoryPort
	state           outbound.StoryStatePort
	workerPool      outbound.TaskDispatcher
	logger          outbound.LoggerPort

	mu    sync.Mutex
	tasks map[string]*storyTask
}

func NewStoryBuilder(
	scriptGenerator outbound.ScriptGeneratorPort,
	storyProcessor inbound.StoryProcessorPort,
	storyRepo outbound.StoryRepositoryPort,
	state outbound.StoryStatePort,
	workerPool outbound.TaskDispatcher,
	logger outbound.LoggerPort) inbound.StoryBuilderPort {
	return &storyBuilder{
		scriptGenerator: scriptGenerator,
		storyProcessor:  storyProcessor,
		storyRepo:       storyRepo,
		state:           state,
		workerPool:      workerPool,
		logger:          logger,
		tasks:           make(map[string]*storyTask),
	}
}

// BuildStory creates the story script, registers pipeline state, persists the
// story, and starts processing on a context detached from the request so the
// pipeline outlives the HTTP call.
func (b *storyBuilder) BuildStory(ctx context.Context, params inbound.BuildStoryParams) (*inbound.BuildStoryResult, error) {
	story, err := b.resolveScript(ctx, params)
	if err != nil {
		return nil, err
	}

	story.ID = uuid.NewString()
	for i := range story.Pages {
		if story.Pages[i].PageNumber == 0 {
			story.Pages[i].PageNumber = i + 1
		}
	}
	if len(story.Pages) == 0 {
		return nil, fmt.Errorf("story script has no pages")
	}

	if err := b.state.CreateStory(ctx, *story); err != nil {
		return nil, err
	}
	if err := b.storyRepo.SaveStory(ctx, *story); err != nil {
		b.logger.ErrorWithFields(err, "failed to persist story, continuing with in-memory state", map[string]interface{}{
			"story_id": story.ID,
		})
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	task := &storyTask{cancel: cancel, done: make(chan struct{})}

	b.mu.Lock()
	b.tasks[story.ID] = task
	b.mu.Unlock()

	storyID := story.ID
	processParams := inbound.ProcessStoryParams{
		StoryID:             storyID,
		Story:               *story,
		ArtStyle:            params.ArtStyle,
		NarratorVoiceID:     params.NarratorVoiceID,
		CharacterReferences: params.CharacterReferences,
	}
	if err := b.workerPool.Submit(func() {
		defer cancel()
		processErr := b.storyProcessor.ProcessStory(taskCtx, processParams)
		if processErr != nil {
			b.logger.ErrorWithFields(processErr, "story pipeline task failed", map[string]interface{}{
				"story_id": storyID,
			})
		}
		task.finish(processErr)
	}); err != nil {
		cancel()
		task.finish(err)
		return nil, err
	}

	return &inbound.BuildStoryResult{
		StoryID: story.ID,
		Title:   story.Title,
	}, nil
}

func (b *storyBuilder) resolveScript(ctx context.Context, params inbound.BuildStoryParams) (*domain.Story, error) {
	if params.Script != nil {
		script := *params.Script
		return &script, nil
	}
	if params.Prompt == "" {
		return nil, fmt.Errorf("either a prompt or a story script is required")
	}
	return b.scriptGenerator.GenerateScript(ctx, outbound.GenerateScriptRequest{
		Prompt:    params.Prompt,
		PageCount: params.PageCount,
		ArtStyle:  params.ArtStyle,
	})
}

// CancelStory aborts an in-flight pipeline. The shared context is checked
// between beats, so the story stops issuing provider calls at the next
// suspension point.
func (b *storyBuilder) CancelStory(ctx context.Context, storyID string) bool {
	b.mu.Lock()
	task, ok := b.tasks[storyID]
	b.mu.Unlock()

	if !ok || !task.running() {
		return false
	}
	task.cancel()
	b.logger.InfoWithFields("story cancellation requested", map[string]interface{}{
		"story_id": storyID,
	})
	return true
}

func (b *storyBuilder) TaskRunning(storyID string) bool {
	b.mu.Lock()
	task, ok := b.tasks[storyID]
	b.mu.Unlock()
	return ok && task.running()
}
