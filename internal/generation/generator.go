package generation

import "context"

// ImagePayload is one transmission-ready encoded image produced by the
// normalizer.
type ImagePayload struct {
	// Data holds the encoded image bytes.
	Data []byte

	// MIMEType is the content type of Data (e.g. "image/jpeg").
	MIMEType string
}

// Generator defines the interface for the external inference service.
// This interface is the only seam through which the pipeline reaches the
// network, so tests can substitute a scripted fake.
type Generator interface {
	// TranscribeImage extracts all visible text from the given image,
	// preserving structure and natural reading order. It returns the
	// transcribed text or an error if the service call fails or produces
	// an empty response.
	TranscribeImage(ctx context.Context, image ImagePayload) (string, error)

	// GenerateText sends a free-form prompt to the service and returns the
	// generated text verbatim.
	GenerateText(ctx context.Context, prompt string) (string, error)
}
