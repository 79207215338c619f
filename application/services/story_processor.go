package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/channel_utils"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
)

type storyProcessor struct {
	sceneProcessor inbound.SceneProcessorPort
	storyRepo      outbound.StoryRepositoryPort
	state          outbound.StoryStatePort
	workerPool     outbound.TaskDispatcher
	logger         outbound.LoggerPort
	stagger        time.Duration
}

func NewStoryProcessor(
	sceneProcessor inbound.SceneProcessorPort,
	storyRepo outbound.StoryRepositoryPort,
	state outbound.StoryStatePort,
	workerPool outbound.TaskDispatcher,
	logger outbound.LoggerPort,
	pipelineCfg *config.PipelineConfig) inbound.StoryProcessorPort {
	return &storyProcessor{
		sceneProcessor: sceneProcessor,
		storyRepo:      storyRepo,
		state:          state,
		workerPool:     workerPool,
		logger:         logger,
		stagger:        pipelineCfg.PageStagger,
	}
}

// ProcessStory schedules every page of the story: page one starts immediately,
// each later page after pageIndex * stagger. The stagger offsets start times
// only; once started the page tasks run concurrently. The call returns after
// every page task has settled and the terminal story status is persisted.
func (p *storyProcessor) ProcessStory(ctx context.Context, params inbound.ProcessStoryParams) error {
	totalPages := len(params.Story.Pages)
	p.logger.InfoWithFields("story processing scenes", map[string]interface{}{
		"story_id": params.StoryID,
		"scenes":   totalPages,
	})

	var completed int64
	errChannels := make([]<-chan error, 0, totalPages)

	for i, page := range params.Story.Pages {
		delay := time.Duration(i) * p.stagger
		errCh := make(chan error, 1)
		errChannels = append(errChannels, errCh)

		pg := page
		if err := p.workerPool.Submit(func() {
			defer close(errCh)
			if err := p.runPageTask(ctx, params, pg, delay); err != nil {
				errCh <- err
				return
			}
			done := atomic.AddInt64(&completed, 1)
			p.state.UpdateProgress(ctx, params.StoryID, int(done))
			p.logger.InfoWithFields("scene finished", map[string]interface{}{
				"story_id":  params.StoryID,
				"page":      pg.PageNumber,
				"completed": fmt.Sprintf("%d/%d", done, totalPages),
			})
		}); err != nil {
			errCh <- err
			close(errCh)
		}
	}

	mergedErrCh, err := channel_utils.MergeChannels(p.workerPool, errChannels...)
	if err != nil {
		p.logger.Error(err, "failed to merge page task error channels")
		return p.finalize(ctx, params.StoryID, domain.StoryStatusFailed)
	}

	var firstErr error
	for taskErr := range mergedErrCh {
		if firstErr == nil {
			firstErr = taskErr
		}
		p.logger.Error(taskErr, "page task crashed")
	}

	switch {
	case ctx.Err() != nil:
		return p.finalize(ctx, params.StoryID, domain.StoryStatusCancelled)
	case firstErr != nil:
		if err := p.finalize(ctx, params.StoryID, domain.StoryStatusFailed); err != nil {
			return err
		}
		return firstErr
	case p.anyPageFailed(ctx, params.StoryID):
		return p.finalize(ctx, params.StoryID, domain.StoryStatusCompletedWithErrors)
	default:
		return p.finalize(ctx, params.StoryID, domain.StoryStatusCompleted)
	}
}

// runPageTask waits out the page's stagger delay and runs the scene. A panic
// escaping the scene processor is a defect; it is converted into a task error
// so the aggregate wait can observe it.
func (p *storyProcessor) runPageTask(ctx context.Context, params inbound.ProcessStoryParams, page domain.Page, delay time.Duration) (taskErr error) {
	defer func() {
		if r := recover(); r != nil {
			taskErr = fmt.Errorf("scene %d crashed: %v", page.PageNumber, r)
		}
	}()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
	if ctx.Err() != nil {
		return nil
	}

	return p.sceneProcessor.ProcessScene(ctx, inbound.ProcessSceneParams{
		StoryID:             params.StoryID,
		PageNumber:          page.PageNumber,
		Timeline:            page.Timeline,
		ImagePrompt:         page.ImagePrompt,
		ArtStyle:            params.ArtStyle,
		NarratorVoiceID:     params.NarratorVoiceID,
		CharacterReferences: params.CharacterReferences,
	})
}

func (p *storyProcessor) anyPageFailed(ctx context.Context, storyID string) bool {
	storyState, err := p.state.GetStory(ctx, storyID)
	if err != nil || storyState == nil {
		return false
	}
	for _, page := range storyState.Pages {
		if page.Status == domain.PageStatusFailed {
			return true
		}
	}
	return false
}

// finalize writes the terminal status to both the live state and the durable
// store. The durable write is best-effort against a cancelled context.
func (p *storyProcessor) finalize(ctx context.Context, storyID string, status domain.StoryStatus) error {
	p.state.SetStoryStatus(ctx, storyID, status)

	persistCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := p.storyRepo.SetStoryStatus(persistCtx, storyID, status); err != nil {
		p.logger.ErrorWithFields(err, "failed to persist story status", map[string]interface{}{
			"story_id": storyID,
			"status":   string(status),
		})
		return err
	}

	p.logger.InfoWithFields("story finalized", map[string]interface{}{
		"story_id": storyID,
		"status":   string(status),
	})
	return nil
}
