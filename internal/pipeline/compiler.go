package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/exhibitlab/docent-api/internal/domain"
)

// sectionDelimiter separates the header and the per-image sections of a
// compiled document.
const sectionDelimiter = "---"

// Compile renders an ordered result list into a single markdown document:
// a header with the title, generation timestamp, and aggregate counts,
// followed by one section per item in input order. Successful items show
// the transcribed text verbatim; failed items are marked and show the error
// description. Pure formatting: identical items and timestamp produce an
// identical document.
func Compile(items []domain.TranscriptionItem, title string, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "Transcribed on: %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total images processed: %d\n", len(items))
	fmt.Fprintf(&b, "Successful transcriptions: %d\n", domain.SuccessCount(items))
	b.WriteString("\n")
	b.WriteString(sectionDelimiter)
	b.WriteString("\n\n")

	for i, item := range items {
		if item.Success {
			fmt.Fprintf(&b, "## Image %d: %s\n\n", i+1, item.Filename)
			b.WriteString(item.Text)
			b.WriteString("\n\n")
		} else {
			fmt.Fprintf(&b, "## Image %d: %s [FAILED]\n", i+1, item.Filename)
			fmt.Fprintf(&b, "Error: %s\n\n", item.Error)
		}
		b.WriteString(sectionDelimiter)
		b.WriteString("\n\n")
	}

	return b.String()
}
