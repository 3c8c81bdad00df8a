// Package notifier delivers digest notifications.
//
// A Payload (title, body, optional image) is handed to a Dispatcher, which
// validates it, applies a send rate limit and passes it to one Sender
// driver: Firebase Cloud Messaging, Telegram, the console, or a no-op.
//
// # Delivery
//
// Delivery is at most once. There is no queue and no retry: a failed send is
// returned as a *DeliveryError and the caller decides whether to continue.
//
// # History
//
// For debugging and operator visibility, the dispatcher keeps a small
// in-memory history of recent deliveries.
package notifier
