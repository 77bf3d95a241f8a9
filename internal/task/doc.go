// Package task implements the unit of background work run by the completion
// queue: filling in the answer and/or explanation of one question with an
// LLM. QuestionCompleter is the queue.Completer wired into the processor; it
// loads the question, marks the selected fields ai_pending, generates, saves
// and translates failures into the queue's retry vocabulary.
package task
