package inbound

import (
	"context"

	"storybook-pipeline/domain"
)

type BuildStoryParams struct {
	Prompt              string
	PageCount           int
	ArtStyle            string
	NarratorVoiceID     string
	CharacterReferences []domain.CharacterReference
	// Script lets callers supply a pre-generated story script and skip the
	// text-generation call.
	Script *domain.Story
}

type BuildStoryResult struct {
	StoryID string
	Title   string
}

// StoryBuilderPort creates a story (generating the script when none is given),
// registers its pipeline state, and starts processing as a supervised
// background task.
type StoryBuilderPort interface {
	BuildStory(ctx context.Context, params BuildStoryParams) (*BuildStoryResult, error)
	// CancelStory aborts an in-flight story between suspension points.
	CancelStory(ctx context.Context, storyID string) bool
	// TaskRunning reports whether the story's pipeline task is still active.
	TaskRunning(storyID string) bool
}
