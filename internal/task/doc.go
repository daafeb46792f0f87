// Package task runs background work for the job pipeline so HTTP request
// handling never blocks on multi-minute transcription batches. It provides
// the Task abstraction, a bounded in-memory queue, a worker-pool runner,
// and the transcription task that drives a job from processing to a
// terminal state.
package task
