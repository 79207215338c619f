package services

import (
	"strings"

	"storybook-pipeline/application/ports/outbound"
)

type fadeTier struct {
	keywords []string
	envelope outbound.FadeEnvelope
}

// fadeTiers maps sound-effect description keywords to fade envelopes. Tiers
// are checked in order; the keyword sets are disjoint.
var fadeTiers = []fadeTier{
	{
		// percussive and impact sounds
		keywords: []string{"click", "snap", "pop", "beep", "ding", "tick", "tap", "knock", "crash", "bang", "explosion", "crack"},
		envelope: outbound.FadeEnvelope{FadeIn: 0.1, FadeOut: 0.2},
	},
	{
		// locomotion and environmental motion
		keywords: []string{"footstep", "walk", "run", "rustle", "wind", "rain", "thunder", "ocean", "forest"},
		envelope: outbound.FadeEnvelope{FadeIn: 0.3, FadeOut: 0.4},
	},
	{
		// vocal and social sounds
		keywords: []string{"laugh", "whisper", "murmur", "chatter", "voice", "giggle", "sigh", "gasp", "cough"},
		envelope: outbound.FadeEnvelope{FadeIn: 0.4, FadeOut: 0.5},
	},
}

var defaultFade = outbound.FadeEnvelope{FadeIn: 0.2, FadeOut: 0.3}

// ClassifyFade returns the fade envelope for a sound-effect description. It is
// a pure lookup: the same description always yields the same envelope.
func ClassifyFade(description string) outbound.FadeEnvelope {
	if description == "" {
		return defaultFade
	}
	lower := strings.ToLower(description)
	for _, tier := range fadeTiers {
		for _, keyword := range tier.keywords {
			if strings.Contains(lower, keyword) {
				return tier.envelope
			}
		}
	}
	return defaultFade
}
