package inbound

import (
	"context"

	"storybook-pipeline/domain"
)

type ProcessStoryParams struct {
	StoryID             string
	Story               domain.Story
	ArtStyle            string
	NarratorVoiceID     string
	CharacterReferences []domain.CharacterReference
}

// StoryProcessorPort fans a story's pages out to the scene processor and
// finalizes the overall story status once every page task has settled.
type StoryProcessorPort interface {
	ProcessStory(ctx context.Context, params ProcessStoryParams) error
}
