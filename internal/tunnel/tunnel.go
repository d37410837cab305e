// Package tunnel exposes the local server on a public HTTPS address so the
// Koraki onboarding flow can redirect back to the admin page.
package tunnel

import (
	"context"
	"net"
	"strings"
)

// Endpoint is a public listener. Connections accepted on it come from the
// tunnel provider.
type Endpoint interface {
	net.Listener
	// URL is the public base address, always with a scheme.
	URL() string
}

// Opener creates an Endpoint.
type Opener interface {
	Open(ctx context.Context) (Endpoint, error)
}

type endpoint struct {
	net.Listener
	url string
}

func (e *endpoint) URL() string {
	return e.url
}

// publicURL normalizes a listener address to an https URL.
func publicURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	return "https://" + strings.TrimRight(addr, "/")
}
