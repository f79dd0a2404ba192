// Package inspect reads recent thread history and classifies the latest
// entry so the reply pipeline only ever acts on genuine inbound messages.
package inspect
