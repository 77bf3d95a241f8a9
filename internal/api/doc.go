// Package api exposes the completion queue over HTTP. Handlers decode and
// validate requests, call the completion service and map its errors to
// status codes and safe messages.
package api
