package dto

import "storybook-pipeline/domain"

// BuildStoryRequest starts a story production run. Either Prompt or Script
// must be present: a prompt is expanded into a script first, a script is
// produced as-is.
type BuildStoryRequest struct {
	Prompt              string                      `json:"prompt"`
	PageCount           int                         `json:"page_count"`
	ArtStyle            string                      `json:"art_style"`
	NarratorVoiceID     string                      `json:"narrator_voice_id"`
	CharacterReferences []CharacterReferenceRequest `json:"character_references"`
	Script              *domain.Story               `json:"script"`
}

type CharacterReferenceRequest struct {
	ID            string `json:"id"`
	CharacterName string `json:"character_name"`
	ImageBase64   string `json:"image_base64"`
}
