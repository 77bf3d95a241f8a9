// Package service contains the application use cases behind the HTTP API.
//
// CompletionService turns API requests into queue work: it resolves the
// questions to complete (explicit IDs or a store filter), builds one queue
// item per question and forwards the queue controls (pause, resume, retry,
// clear, concurrency) to the processor. It depends on the store and queue
// through interfaces, never on their implementations.
package service
