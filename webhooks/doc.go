// Package webhooks turns raw conversation webhook deliveries into
// normalized events.
//
// The request path is split in two: Accept runs synchronously and only
// verifies the delivery, Process runs after the caller has already
// acknowledged with 200 and never influences the HTTP response.
package webhooks
