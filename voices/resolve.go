package voices

import (
	"strings"

	"storybook-pipeline/domain"
)

var aliases = map[string]map[string]string{
	CategoryNarration: {
		"narrator_01":   "EkK5I93UQWFDigLMpZcX",
		"warm_narrator": "EkK5I93UQWFDigLMpZcX",
		"rachel":        "21m00Tcm4TlvDq8ikWAM",
		"bella":         "pFZP5JQG7iQjIQuC4Bku",
		"antoni":        "JBFqnCBsd6RMkjVDRZzb",
	},
	CategoryCharacters: {
		"hero_01":     "ZF6FPAbjXT4488VcRRnw",
		"sidekick_01": "Crm8VULvkVs5ZBDa1Ixm",
		"villain_01":  "2EiwWnXFnvU5JabPnv8n",
		"adam":        "8JVbfL6oEdmuxKn5DK2C",
		"sam":         "Crm8VULvkVs5ZBDa1Ixm",
		"domi":        "2EiwWnXFnvU5JabPnv8n",
		"bella":       "pFZP5JQG7iQjIQuC4Bku",
	},
}

var traitVoices = []struct {
	traits []string
	voice  string
}{
	{traits: []string{"brave", "leader", "hero"}, voice: "adam"},
	{traits: []string{"curious", "playful", "mischievous"}, voice: "sam"},
	{traits: []string{"wise", "mentor", "guardian"}, voice: "antoni"},
	{traits: []string{"kind", "gentle", "friend"}, voice: "bella"},
	{traits: []string{"mysterious", "villain", "shadow"}, voice: "domi"},
}

// DefaultCharacterSettings mirrors the provider defaults used when a beat
// carries no explicit voice settings.
var DefaultCharacterSettings = domain.VoiceSettings{
	Stability:       0.45,
	SimilarityBoost: 0.8,
	Style:           0.2,
}

// looksLikeID treats any spaceless string of provider-id length as an id.
func looksLikeID(value string) bool {
	return len(value) >= 12 && !strings.ContainsAny(value, " \t")
}

// Resolve maps a named voice alias to a provider id. Values that already look
// like provider ids pass through unchanged; unknown aliases resolve to "".
func Resolve(nameOrID, category string) string {
	if nameOrID == "" {
		return ""
	}
	if looksLikeID(nameOrID) {
		return nameOrID
	}
	key := strings.ToLower(strings.TrimSpace(nameOrID))
	if id, ok := aliases[category][key]; ok {
		return id
	}
	// Cross-category aliases are accepted so a narrator alias on a character
	// beat still resolves.
	for _, group := range aliases {
		if id, ok := group[key]; ok {
			return id
		}
	}
	return ""
}

// MatchCharacterTraits infers a character voice from its trait list.
func MatchCharacterTraits(traits []string) string {
	if len(traits) == 0 {
		return ""
	}
	lower := make(map[string]bool, len(traits))
	for _, t := range traits {
		lower[strings.ToLower(t)] = true
	}
	for _, mapping := range traitVoices {
		for _, t := range mapping.traits {
			if lower[t] {
				return Resolve(mapping.voice, CategoryCharacters)
			}
		}
	}
	return ""
}

// PickNarrationVoice resolves a narration beat's voice: explicit id, then
// named alias, then the story-level default, then the configured default.
func PickNarrationVoice(beat domain.Beat, storyDefault, configuredDefault string) string {
	if beat.VoiceID != "" {
		return beat.VoiceID
	}
	if beat.Voice != "" {
		if id := Resolve(beat.Voice, CategoryNarration); id != "" {
			return id
		}
	}
	if storyDefault != "" {
		return storyDefault
	}
	return Resolve(configuredDefault, CategoryNarration)
}

// PickCharacterVoice resolves a character beat's voice: explicit id, named
// alias, trait inference, then the generic character fallback.
func PickCharacterVoice(beat domain.Beat) string {
	if beat.VoiceID != "" {
		return beat.VoiceID
	}
	if beat.Voice != "" {
		if id := Resolve(beat.Voice, CategoryCharacters); id != "" {
			return id
		}
	}
	if id := MatchCharacterTraits(beat.Traits); id != "" {
		return id
	}
	return Resolve("sam", CategoryCharacters)
}
