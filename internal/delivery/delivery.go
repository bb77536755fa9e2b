// Package delivery defines the contract shared by every inbound adapter run by the application.
package delivery

import "context"

// Delivery is a long-running inbound adapter (HTTP server, background worker).
// Serve blocks until the adapter stops; shutdown is driven by fx lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
