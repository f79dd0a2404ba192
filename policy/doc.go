// Package policy decides whether and how to reply: bounce filtering,
// keyword intent classification, and template rendering. Everything here
// is pure; no I/O, no clocks.
package policy
