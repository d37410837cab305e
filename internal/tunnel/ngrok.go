package tunnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	ngroklib "golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"

	"github.com/kolapsis/koraki/internal/config"
)

// ErrMissingAuthToken is returned when the tunnel is opened without a token.
var ErrMissingAuthToken = errors.New("ngrok auth token is required (set tunnel.authtoken or KORAKI_NGROK_AUTHTOKEN)")

type listenFunc func(ctx context.Context, cfg ngrokconfig.Tunnel, opts ...ngroklib.ConnectOption) (net.Listener, error)

func ngrokListen(ctx context.Context, cfg ngrokconfig.Tunnel, opts ...ngroklib.ConnectOption) (net.Listener, error) {
	return ngroklib.Listen(ctx, cfg, opts...)
}

// Ngrok opens HTTPS endpoints through ngrok.
type Ngrok struct {
	authToken string
	domain    string
	listen    listenFunc
}

// NewNgrok creates an Ngrok opener from the tunnel configuration.
func NewNgrok(cfg config.TunnelConfig) *Ngrok {
	return &Ngrok{
		authToken: cfg.AuthToken,
		domain:    cfg.Domain,
		listen:    ngrokListen,
	}
}

// Open connects to ngrok and returns the public endpoint. A fixed domain is
// used when configured, otherwise ngrok assigns a random one.
func (n *Ngrok) Open(ctx context.Context) (Endpoint, error) {
	if n.authToken == "" {
		return nil, ErrMissingAuthToken
	}

	var opts []ngrokconfig.HTTPEndpointOption
	if n.domain != "" {
		opts = append(opts, ngrokconfig.WithDomain(n.domain))
	}

	ln, err := n.listen(ctx, ngrokconfig.HTTPEndpoint(opts...), ngroklib.WithAuthtoken(n.authToken))
	if err != nil {
		return nil, fmt.Errorf("opening ngrok tunnel: %w", err)
	}

	ep := &endpoint{Listener: ln, url: publicURL(ln.Addr().String())}
	slog.Info("ngrok tunnel established", "public_url", ep.url, "fixed_domain", n.domain != "")
	return ep, nil
}
