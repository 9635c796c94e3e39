// Package notify tells a newly promoted court head that it is their turn.
//
// Promotions are enqueued as asynq tasks so the webhook reply is never
// blocked on a push call. A Worker drains the queue and delivers each task
// through the LINE push API. When notifications are disabled New returns a
// notifier that drops every promotion.
package notify
