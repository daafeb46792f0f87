// Package pipeline implements the batched transcription engine, the
// deterministic document compiler, periodic checkpointing of in-progress
// results, and the on-disk output writer for compiled documents and
// generated content.
package pipeline
