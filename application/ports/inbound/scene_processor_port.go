package inbound

import (
	"context"

	"storybook-pipeline/domain"
)

type ProcessSceneParams struct {
	StoryID             string
	PageNumber          int
	Timeline            []domain.Beat
	ImagePrompt         string
	ArtStyle            string
	NarratorVoiceID     string
	CharacterReferences []domain.CharacterReference
}

// SceneProcessorPort drives a single page through synthesis, mixing, and
// illustration. Provider failures are recorded against the page state rather
// than returned; the error return is reserved for unexpected crashes.
type SceneProcessorPort interface {
	ProcessScene(ctx context.Context, params ProcessSceneParams) error
}
