// Package store defines the question persistence port used by the
// completion task and the service layer, the filter and status-update
// types it accepts, and the errors every implementation maps into.
package store
