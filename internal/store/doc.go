// Package store defines the persistence boundary for jobs. The pipeline
// only ever talks to the JobStore interface, so the reference in-memory
// implementation can be swapped for a durable backing store without
// touching the pipeline logic.
package store
