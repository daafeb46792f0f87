package domain

import "time"

// ContentType identifies one kind of derived content artifact.
type ContentType string

// Supported content types. Flashcards parse into a structured schema; the
// remaining types are narrative scripts stored verbatim.
const (
	ContentTypeFlashcards  ContentType = "flashcards"
	ContentTypeInfographic ContentType = "infographic"
	ContentTypeVideoScript ContentType = "video_script"
	ContentTypePodcast     ContentType = "podcast"
)

// AllContentTypes lists every supported content type.
var AllContentTypes = []ContentType{
	ContentTypeFlashcards,
	ContentTypeInfographic,
	ContentTypeVideoScript,
	ContentTypePodcast,
}

// IsValidContentType checks if the given tag is a supported ContentType.
func IsValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeFlashcards, ContentTypeInfographic, ContentTypeVideoScript, ContentTypePodcast:
		return true
	default:
		return false
	}
}

// Flashcard is one question/answer pair generated from a compiled document.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// FlashcardSet is the structured payload parsed from a flashcard generation
// response.
type FlashcardSet struct {
	Flashcards []Flashcard `json:"flashcards"`
}

// Artifact is one derivative content output for a job. Exactly one of
// Flashcards or Text is populated depending on the content type. Artifacts
// are never mutated after creation.
type Artifact struct {
	Type        ContentType   `json:"type"`
	Flashcards  *FlashcardSet `json:"flashcards,omitempty"`
	Text        string        `json:"text,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}
