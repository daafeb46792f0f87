// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts external clients to the job service:
// uploads become jobs, job operations map to REST endpoints, and internal
// errors map to safe HTTP status codes and messages.
package api
