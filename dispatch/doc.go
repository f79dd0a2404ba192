// Package dispatch executes decided actions against the conversations and
// CRM APIs. Outcomes are explicit values; nothing here ever reaches the
// webhook's HTTP response.
package dispatch
