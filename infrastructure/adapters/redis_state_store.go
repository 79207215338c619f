package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

const (
	storyStateKeyPrefix     = "story:state:"
	referenceImageKeyPrefix = "story:refimg:"
)

// redisStateStore keeps pipeline state in Redis so status queries survive a
// process restart. The reference image lives under its own key because its
// first-write-wins semantics map directly onto SETNX.
type redisStateStore struct {
	mu     sync.Mutex
	client *redis.Client
	ttl    time.Duration
	logger outbound.LoggerPort
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration, logger outbound.LoggerPort) outbound.StoryStatePort {
	return &redisStateStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func stateKey(storyID string) string {
	return storyStateKeyPrefix + storyID
}

func referenceImageKey(storyID string) string {
	return referenceImageKeyPrefix + storyID
}

func (r *redisStateStore) CreateStory(ctx context.Context, story domain.Story) error {
	pages := make([]*domain.PageState, 0, len(story.Pages))
	for _, page := range story.Pages {
		pages = append(pages, &domain.PageState{
			PageNumber: page.PageNumber,
			Status:     domain.PageStatusPending,
		})
	}

	state := &domain.StoryState{
		StoryID:   story.ID,
		Title:     story.Title,
		CreatedAt: time.Now(),
		Status:    domain.StoryStatusProcessing,
		Pages:     pages,
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	created, err := r.client.SetNX(ctx, stateKey(story.ID), payload, r.ttl).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("story %s already exists", story.ID)
	}
	return nil
}

func (r *redisStateStore) GetStory(ctx context.Context, storyID string) (*domain.StoryState, error) {
	payload, err := r.client.Get(ctx, stateKey(storyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("story %s not found", storyID)
	}
	if err != nil {
		return nil, err
	}

	var state domain.StoryState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}
	state.ReferenceImage, _ = r.client.Get(ctx, referenceImageKey(storyID)).Result()
	return &state, nil
}

func (r *redisStateStore) ListStories(ctx context.Context) ([]*domain.StoryState, error) {
	var states []*domain.StoryState
	iter := r.client.Scan(ctx, 0, storyStateKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		payload, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var state domain.StoryState
		if err := json.Unmarshal(payload, &state); err != nil {
			r.logger.ErrorWithFields(err, "skipping corrupt story state", map[string]interface{}{
				"key": iter.Val(),
			})
			continue
		}
		states = append(states, &state)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *redisStateStore) DeleteStory(ctx context.Context, storyID string) error {
	return r.client.Del(ctx, stateKey(storyID), referenceImageKey(storyID)).Err()
}

func (r *redisStateStore) SetStoryStatus(ctx context.Context, storyID string, status domain.StoryStatus) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		state.Status = status
	})
}

func (r *redisStateStore) SetPageStatus(ctx context.Context, storyID string, pageNumber int, status domain.PageStatus) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		page := state.Page(pageNumber)
		if page == nil {
			return
		}
		if page.Status == domain.PageStatusFailed && status != domain.PageStatusFailed {
			return
		}
		page.Status = status
	})
}

func (r *redisStateStore) AppendPageLog(ctx context.Context, storyID string, pageNumber int, message string) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		page := state.Page(pageNumber)
		if page == nil {
			return
		}
		page.Logs = append(page.Logs, domain.LogEntry{
			Timestamp: time.Now(),
			Message:   message,
		})
	})
}

func (r *redisStateStore) RecordPageError(ctx context.Context, storyID string, pageNumber int, step, message string) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		page := state.Page(pageNumber)
		if page == nil {
			return
		}
		page.Errors = append(page.Errors, domain.ErrorEntry{
			Timestamp: time.Now(),
			Step:      step,
			Message:   message,
		})
		page.Status = domain.PageStatusFailed
	})
}

func (r *redisStateStore) SetPageAssets(ctx context.Context, storyID string, pageNumber int, assets domain.PageAssets) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		page := state.Page(pageNumber)
		if page == nil {
			return
		}
		if assets.Audio != "" {
			page.Assets.Audio = assets.Audio
		}
		if assets.Image != "" {
			page.Assets.Image = assets.Image
		}
	})
}

func (r *redisStateStore) SetReferenceImage(ctx context.Context, storyID string, imageBase64 string) bool {
	won, err := r.client.SetNX(ctx, referenceImageKey(storyID), imageBase64, r.ttl).Result()
	if err != nil {
		r.logger.ErrorWithFields(err, "failed to set reference image", map[string]interface{}{
			"story_id": storyID,
		})
		return false
	}
	return won
}

func (r *redisStateStore) GetReferenceImage(ctx context.Context, storyID string) string {
	image, err := r.client.Get(ctx, referenceImageKey(storyID)).Result()
	if err != nil {
		return ""
	}
	return image
}

func (r *redisStateStore) UpdateProgress(ctx context.Context, storyID string, completedPages int) {
	r.mutate(ctx, storyID, func(state *domain.StoryState) {
		if len(state.Pages) == 0 {
			return
		}
		progress := float64(completedPages) / float64(len(state.Pages))
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		state.Progress = progress
	})
}

// mutate performs a read-modify-write of the state blob. Concurrent writers in
// this process are serialized by the mutex; cross-process writers are not
// expected since a story is driven by a single instance.
func (r *redisStateStore) mutate(ctx context.Context, storyID string, apply func(state *domain.StoryState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := r.client.Get(ctx, stateKey(storyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		r.logger.ErrorWithFields(err, "failed to load story state", map[string]interface{}{
			"story_id": storyID,
		})
		return
	}

	var state domain.StoryState
	if err := json.Unmarshal(payload, &state); err != nil {
		r.logger.ErrorWithFields(err, "failed to decode story state", map[string]interface{}{
			"story_id": storyID,
		})
		return
	}

	apply(&state)

	updated, err := json.Marshal(&state)
	if err != nil {
		r.logger.Error(err, "failed to encode story state")
		return
	}
	if err := r.client.Set(ctx, stateKey(storyID), updated, redis.KeepTTL).Err(); err != nil {
		r.logger.ErrorWithFields(err, "failed to store story state", map[string]interface{}{
			"story_id": storyID,
		})
	}
}
