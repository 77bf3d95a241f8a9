// Package events carries queue notifications to the places that need them.
//
// The queue processor reports progress through a queue.Notifier. The
// InMemoryEventEmitter implements that interface and fans each Notification
// out to registered handlers:
//   - LogHandler: writes notifications to the structured log
//   - RecentBuffer: keeps the latest notifications for the HTTP API
package events
