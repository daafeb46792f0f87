package content

import (
	"bytes"
	"fmt"
	"text/template"
	"unicode/utf8"

	"github.com/exhibitlab/docent-api/internal/domain"
)

// promptData is the data passed to every content prompt template.
type promptData struct {
	Text string
}

// Prompt templates per content type. Each embeds a bounded prefix of the
// compiled transcription and describes the exact target format.
var promptTemplates = map[domain.ContentType]*template.Template{
	domain.ContentTypeFlashcards: template.Must(template.New("flashcards").Parse(
		`Based on the following exhibit transcription, create educational flashcards.

Each flashcard should have:
- A clear question on one side
- A concise, accurate answer on the other side
- Focus on key facts, dates, people, concepts, and important details

Format the output as JSON with this structure:
{
  "flashcards": [
    {
      "question": "Question text here",
      "answer": "Answer text here",
      "category": "Category (e.g., History, Art, Science)"
    }
  ]
}

Create 10-20 flashcards covering the most important information.

Transcription:
{{.Text}}
`)),

	domain.ContentTypeInfographic: template.Must(template.New("infographic").Parse(
		`Based on the following exhibit transcription, create a structured infographic summary.

Format the content as a clear, visually-oriented summary with:
- Main title and subtitle
- Key statistics or numbers (if any)
- Important dates or timeline
- Key concepts or themes (3-5 bullet points)
- Notable facts or highlights
- Visual suggestions (what images/icons would work well)

Format as markdown with clear sections and bullet points.

Transcription:
{{.Text}}
`)),

	domain.ContentTypeVideoScript: template.Must(template.New("video_script").Parse(
		`Based on the following exhibit transcription, create a video script suitable for text-to-speech or narration.

The script should:
- Be engaging and educational
- Be 2-3 minutes when read aloud (approximately 300-450 words)
- Have a clear introduction, main content, and conclusion
- Use conversational language suitable for general audiences
- Include natural pauses and emphasis markers [PAUSE] where appropriate
- Be formatted with clear scene descriptions and narration

Format:
[SCENE 1: Introduction]
NARRATOR: [Text here]

[SCENE 2: Main Content]
NARRATOR: [Text here]

[SCENE 3: Conclusion]
NARRATOR: [Text here]

Transcription:
{{.Text}}
`)),

	domain.ContentTypePodcast: template.Must(template.New("podcast").Parse(
		`Based on the following exhibit transcription, format it as a podcast script.

The podcast script should:
- Have a clear introduction hook
- Be conversational and engaging
- Include natural transitions between topics
- Be suitable for audio narration (2-5 minutes)
- Include suggested music/sound effect cues in brackets
- Have clear speaker cues if multiple voices are used

Format:
[INTRO MUSIC]

HOST: [Introduction]

[TRANSITION MUSIC]

HOST: [Main content]

[OUTRO MUSIC]

Transcription:
{{.Text}}
`)),
}

// buildPrompt renders the prompt for the given content type, embedding at
// most limit characters of the compiled text to respect the inference
// service's input bounds.
func buildPrompt(ct domain.ContentType, compiledText string, limit int) (string, error) {
	tmpl, ok := promptTemplates[ct]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidContentType, ct)
	}

	var buf bytes.Buffer
	data := promptData{Text: truncate(compiledText, limit)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
