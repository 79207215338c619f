package voices

// Voice describes one entry of the synthesis provider's catalog. The catalog
// below is a curated snapshot; cmd/fetchvoices regenerates the full list.
type Voice struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        string `json:"age"`
	Gender     string `json:"gender"`
	Accent     string `json:"accent"`
	UseCase    string `json:"use_case"`
	PreviewURL string `json:"preview_url,omitempty"`
}

const (
	CategoryNarration  = "narration"
	CategoryCharacters = "characters"
)

var Catalog = map[string][]Voice{
	CategoryNarration: {
		{ID: "EkK5I93UQWFDigLMpZcX", Name: "James - Husky & Engaging", Age: "middle_aged", Gender: "male", Accent: "american", UseCase: "narrative_story"},
		{ID: "iCrDUkL56s3C8sCRl7wb", Name: "Hope - soothing narrator", Age: "young", Gender: "female", Accent: "american", UseCase: "narrative_story"},
		{ID: "iUqOXhMfiOIbBejNtfLR", Name: "W. Storytime Oxley", Age: "middle_aged", Gender: "male", Accent: "american", UseCase: "narrative_story"},
		{ID: "ESELSAYNsoxwNZeqEklA", Name: "Rebekah Nemethy - Pro Narration", Age: "young", Gender: "female", Accent: "american", UseCase: "narrative_story"},
		{ID: "ZF6FPAbjXT4488VcRRnw", Name: "Amelia", Age: "young", Gender: "female", Accent: "british", UseCase: "narrative_story"},
		{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George", Age: "middle_aged", Gender: "male", Accent: "british", UseCase: "narrative_story"},
		{ID: "pFZP5JQG7iQjIQuC4Bku", Name: "Lily", Age: "middle_aged", Gender: "female", Accent: "british", UseCase: "narration"},
	},
	CategoryCharacters: {
		{ID: "Crm8VULvkVs5ZBDa1Ixm", Name: "Andrea Wolff - clear, youthful", Age: "young", Gender: "female", Accent: "american", UseCase: "characters"},
		{ID: "2EiwWnXFnvU5JabPnv8n", Name: "Clyde", Age: "middle_aged", Gender: "male", Accent: "american", UseCase: "characters"},
		{ID: "8JVbfL6oEdmuxKn5DK2C", Name: "Johnny Kid - Serious", Age: "young", Gender: "male", Accent: "british", UseCase: "characters_animation"},
	},
}

// ByID scans every category for a voice with the given provider id.
func ByID(voiceID string) (Voice, bool) {
	for _, group := range Catalog {
		for _, v := range group {
			if v.ID == voiceID {
				return v, true
			}
		}
	}
	return Voice{}, false
}

// ByCategoryAndAge returns the voices of a category filtered by age group, or
// the whole category when no age matches.
func ByCategoryAndAge(category, age string) []Voice {
	group := Catalog[category]
	if age == "" {
		return group
	}
	var filtered []Voice
	for _, v := range group {
		if v.Age == age {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return group
	}
	return filtered
}
