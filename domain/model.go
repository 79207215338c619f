package domain

import (
	"strings"
	"time"
)

type StoryStatus string

const (
	StoryStatusProcessing          StoryStatus = "processing"
	StoryStatusCompleted           StoryStatus = "completed"
	StoryStatusCompletedWithErrors StoryStatus = "completed_with_errors"
	StoryStatusFailed              StoryStatus = "failed"
	StoryStatusCancelled           StoryStatus = "cancelled"
)

type PageStatus string

const (
	PageStatusPending    PageStatus = "pending"
	PageStatusProcessing PageStatus = "processing"
	PageStatusCompleted  PageStatus = "completed"
	PageStatusFailed     PageStatus = "failed"
)

type BeatType string

const (
	NarrationBeat BeatType = "narration"
	CharacterBeat BeatType = "character"
	SfxBeat       BeatType = "sfx"
)

// Step names used when recording page errors. Beat-level errors use the beat
// type itself as the step.
const (
	MixingStep       = "mixing"
	IllustrationStep = "illustration"
)

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
}

// Beat is one entry in a page's timeline. The Type discriminates which of the
// remaining fields are meaningful: narration and character beats carry spoken
// Text plus voice hints, sfx beats carry a Description.
type Beat struct {
	Type          BeatType       `json:"type"`
	Text          string         `json:"text,omitempty"`
	Voice         string         `json:"voice,omitempty"`
	VoiceID       string         `json:"voice_id,omitempty"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
	Name          string         `json:"name,omitempty"`
	Emotion       string         `json:"emotion,omitempty"`
	Traits        []string       `json:"traits,omitempty"`
	Description   string         `json:"description,omitempty"`
	Placeholder   string         `json:"placeholder,omitempty"`
}

type Page struct {
	PageNumber  int    `json:"page_number"`
	Title       string `json:"title,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
	Timeline    []Beat `json:"timeline"`
}

// DialogueText concatenates the spoken text of a page's timeline in order.
func (p Page) DialogueText() string {
	var parts []string
	for _, beat := range p.Timeline {
		if beat.Type == NarrationBeat || beat.Type == CharacterBeat {
			if beat.Text != "" {
				parts = append(parts, beat.Text)
			}
		}
	}
	return strings.Join(parts, " ")
}

type Story struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Logline string `json:"logline,omitempty"`
	Pages   []Page `json:"pages"`
}

// CharacterReference biases illustration calls toward a consistent character
// appearance. ImageBase64 is a data-URI encoded image.
type CharacterReference struct {
	ID            string `json:"id"`
	CharacterName string `json:"character_name"`
	ImageBase64   string `json:"image_base64"`
}

type PageAssets struct {
	Audio string `json:"audio,omitempty"`
	Image string `json:"image,omitempty"`
}

type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

type ErrorEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Step      string    `json:"step"`
	Message   string    `json:"message"`
}

// PageState is the pipeline-owned record of a page's progress. It lives in the
// story state store, not in the relational store.
type PageState struct {
	PageNumber int          `json:"page_number"`
	Status     PageStatus   `json:"status"`
	Assets     PageAssets   `json:"assets"`
	Logs       []LogEntry   `json:"logs"`
	Errors     []ErrorEntry `json:"errors"`
}

type StoryState struct {
	StoryID        string       `json:"story_id"`
	Title          string       `json:"title"`
	CreatedAt      time.Time    `json:"created_at"`
	Status         StoryStatus  `json:"status"`
	Pages          []*PageState `json:"pages"`
	ReferenceImage string       `json:"reference_image,omitempty"`
	Progress       float64      `json:"progress"`
}

func (s *StoryState) Page(pageNumber int) *PageState {
	for _, p := range s.Pages {
		if p.PageNumber == pageNumber {
			return p
		}
	}
	return nil
}
