// Package notify delivers one-time codes through an out-of-band channel.
// The auth core only depends on the Notifier interface; a failed or timed
// out delivery surfaces as an error and never leaves a live code behind.
package notify

import "context"

// Notifier sends one message to one recipient. Implementations must honour
// the context deadline; there is no retry logic at this layer.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
