// Package service contains the application use cases of the job pipeline.
// It orchestrates domain objects, the job store, the event layer, and the
// content dispatcher to fulfill the operations the API layer exposes:
// submitting uploads as jobs, starting pipeline runs, reporting status,
// delivering results, and generating derivative content.
//
// Services receive dependencies through constructor injection and depend
// only on interfaces, never on concrete infrastructure, so the HTTP layer
// and the background task layer stay decoupled from each other.
package service
