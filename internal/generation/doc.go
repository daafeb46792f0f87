// Package generation defines the boundary between the application core and
// the external vision-capable inference service. The pipeline depends only
// on the Generator interface; the concrete client lives in
// internal/platform/gemini.
package generation
