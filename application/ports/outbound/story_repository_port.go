package outbound

import (
	"context"

	"storybook-pipeline/domain"
)

// PageAssetURLs carries the asset URLs to persist against a page. Nil fields
// are left untouched.
type PageAssetURLs struct {
	AudioURL *string
	ImageURL *string
}

// StoryRepositoryPort is the durable copy of stories and their pages. The
// in-memory state store remains the source of truth for live status queries.
type StoryRepositoryPort interface {
	SaveStory(ctx context.Context, story domain.Story) error
	UpdatePage(ctx context.Context, storyID string, pageNumber int, urls PageAssetURLs) error
	SetStoryStatus(ctx context.Context, storyID string, status domain.StoryStatus) error
	GetStory(ctx context.Context, storyID string) (*domain.Story, error)
}
