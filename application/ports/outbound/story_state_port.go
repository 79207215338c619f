package outbound

import (
	"context"

	"storybook-pipeline/domain"
)

// StoryStatePort tracks per-page pipeline progress. Mutation calls against an
// unknown story or page are no-ops, not errors: the state may have been
// evicted or lost across a restart while a persisted copy still exists.
type StoryStatePort interface {
	CreateStory(ctx context.Context, story domain.Story) error
	GetStory(ctx context.Context, storyID string) (*domain.StoryState, error)
	ListStories(ctx context.Context) ([]*domain.StoryState, error)
	DeleteStory(ctx context.Context, storyID string) error

	SetStoryStatus(ctx context.Context, storyID string, status domain.StoryStatus)
	SetPageStatus(ctx context.Context, storyID string, pageNumber int, status domain.PageStatus)
	AppendPageLog(ctx context.Context, storyID string, pageNumber int, message string)
	// RecordPageError appends a timestamped error entry and forces the page
	// status to failed. A later successful step never reverts it.
	RecordPageError(ctx context.Context, storyID string, pageNumber int, step, message string)
	// SetPageAssets shallow-merges the non-empty fields into the page assets.
	SetPageAssets(ctx context.Context, storyID string, pageNumber int, assets domain.PageAssets)

	// SetReferenceImage stores the image only if none is set yet and reports
	// whether this call won. First write wins, atomically.
	SetReferenceImage(ctx context.Context, storyID string, imageBase64 string) bool
	GetReferenceImage(ctx context.Context, storyID string) string

	// UpdateProgress derives a 0..1 fraction from completed/total, clamped.
	UpdateProgress(ctx context.Context, storyID string, completedPages int)
}
