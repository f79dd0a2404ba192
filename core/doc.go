// Package core holds the responder domain: the canonical event and thread
// message shapes, the expiring key sets and loop guard that provide
// at-most-once delivery over an at-least-once webhook channel, and the
// Service that orchestrates the per-event handling pipeline.
//
// Nothing in core performs I/O directly. Collaborators (the conversations
// API, CRM contacts, persistence, metrics) are narrow interfaces injected
// through the options builder, so tests construct isolated instances and
// control time.
package core
