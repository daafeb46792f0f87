package domain

// TranscriptionItem is the outcome for one input image within a job. Items
// are created by the transcription engine in file-processing order and are
// immutable once produced. Failed items carry an empty Text and a
// human-readable Error description.
type TranscriptionItem struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// SuccessCount returns the number of successful items in the given list.
func SuccessCount(items []TranscriptionItem) int {
	count := 0
	for _, item := range items {
		if item.Success {
			count++
		}
	}
	return count
}
