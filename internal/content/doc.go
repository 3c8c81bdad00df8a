// Package content turns prompts into notification bodies.
//
// A Provider is the raw text generator (Gemini in production). Generator
// wraps a Provider with the placeholder policy: a failed or empty generation
// still yields a non-empty body that names the failure, so the notification
// is sent anyway.
package content
