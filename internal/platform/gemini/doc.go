// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It owns the retry policy, response validation, and
// error classification for all calls to the inference service.
package gemini
