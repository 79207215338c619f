package voices

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storybook-pipeline/domain"
)

func TestResolve(t *testing.T) {
	t.Run("provider ids pass through", func(t *testing.T) {
		assert.Equal(t, "EkK5I93UQWFDigLMpZcX", Resolve("EkK5I93UQWFDigLMpZcX", CategoryNarration))
	})

	t.Run("alias lookup is case insensitive", func(t *testing.T) {
		assert.Equal(t, "EkK5I93UQWFDigLMpZcX", Resolve("Narrator_01", CategoryNarration))
		assert.Equal(t, "EkK5I93UQWFDigLMpZcX", Resolve(" warm_narrator ", CategoryNarration))
	})

	t.Run("cross category alias still resolves", func(t *testing.T) {
		assert.Equal(t, "8JVbfL6oEdmuxKn5DK2C", Resolve("adam", CategoryNarration))
	})

	t.Run("unknown alias resolves to empty", func(t *testing.T) {
		assert.Empty(t, Resolve("nobody", CategoryCharacters))
		assert.Empty(t, Resolve("", CategoryNarration))
	})
}

func TestMatchCharacterTraits(t *testing.T) {
	assert.Equal(t, "8JVbfL6oEdmuxKn5DK2C", MatchCharacterTraits([]string{"Brave", "tall"}))
	assert.Equal(t, "2EiwWnXFnvU5JabPnv8n", MatchCharacterTraits([]string{"shadow"}))
	assert.Empty(t, MatchCharacterTraits([]string{"tall", "blue-eyed"}))
	assert.Empty(t, MatchCharacterTraits(nil))
}

func TestPickNarrationVoice(t *testing.T) {
	t.Run("explicit id wins", func(t *testing.T) {
		beat := domain.Beat{VoiceID: "explicit-voice-id-123", Voice: "narrator_01"}
		assert.Equal(t, "explicit-voice-id-123", PickNarrationVoice(beat, "story-default-voice", "narrator_01"))
	})

	t.Run("alias before story default", func(t *testing.T) {
		beat := domain.Beat{Voice: "rachel"}
		assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", PickNarrationVoice(beat, "story-default-voice", ""))
	})

	t.Run("story default before configured", func(t *testing.T) {
		assert.Equal(t, "story-default-voice", PickNarrationVoice(domain.Beat{}, "story-default-voice", "narrator_01"))
	})

	t.Run("configured default resolves last", func(t *testing.T) {
		assert.Equal(t, "EkK5I93UQWFDigLMpZcX", PickNarrationVoice(domain.Beat{}, "", "narrator_01"))
	})

	t.Run("nothing configured yields empty", func(t *testing.T) {
		assert.Empty(t, PickNarrationVoice(domain.Beat{}, "", ""))
	})
}

func TestPickCharacterVoice(t *testing.T) {
	t.Run("explicit id wins", func(t *testing.T) {
		beat := domain.Beat{VoiceID: "explicit-voice-id-123"}
		assert.Equal(t, "explicit-voice-id-123", PickCharacterVoice(beat))
	})

	t.Run("alias resolution", func(t *testing.T) {
		assert.Equal(t, "2EiwWnXFnvU5JabPnv8n", PickCharacterVoice(domain.Beat{Voice: "villain_01"}))
	})

	t.Run("trait inference", func(t *testing.T) {
		beat := domain.Beat{Traits: []string{"wise", "old"}}
		assert.Equal(t, "JBFqnCBsd6RMkjVDRZzb", PickCharacterVoice(beat))
	})

	t.Run("generic fallback", func(t *testing.T) {
		assert.Equal(t, "Crm8VULvkVs5ZBDa1Ixm", PickCharacterVoice(domain.Beat{Name: "Stranger"}))
	})
}

func TestCatalogLookups(t *testing.T) {
	voice, ok := ByID("EkK5I93UQWFDigLMpZcX")
	assert.True(t, ok)
	assert.Equal(t, "male", voice.Gender)

	_, ok = ByID("does-not-exist")
	assert.False(t, ok)

	young := ByCategoryAndAge(CategoryNarration, "young")
	for _, v := range young {
		assert.Equal(t, "young", v.Age)
	}

	// An age group with no matches falls back to the full category.
	assert.Equal(t, Catalog[CategoryCharacters], ByCategoryAndAge(CategoryCharacters, "elderly"))
}
