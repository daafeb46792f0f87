// Package events decouples the request-handling layer from background
// task execution. The job service emits TaskRequestEvents describing
// work to perform; a handler wired to the task runner turns them into
// queued tasks. Neither side imports the other.
package events
