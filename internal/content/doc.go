// Package content derives educational artifacts (flashcards, infographic
// summaries, narration scripts) from a job's compiled transcription text.
// Each content type is generated independently: a failure in one type
// never prevents or corrupts the others.
package content
