// Package domain contains the core business entities of the transcription
// pipeline: jobs, per-image transcription items, and derived content
// artifacts. It is independent of any specific infrastructure or delivery
// mechanism.
package domain
