package check

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultProbeTimeout bounds one reachability probe.
const DefaultProbeTimeout = 10 * time.Second

// Prober decides whether a remote can be read without credentials.
type Prober interface {
	IsPublic(ctx context.Context, url string) bool
}

// HTTPProber sends an anonymous GET to the remote URL. Only a 200 answer
// counts as public; every failure, including a URL scheme net/http does
// not speak (scp-like SSH remotes), means credentials are required.
type HTTPProber struct {
	Client  *http.Client
	Timeout time.Duration
}

func (p HTTPProber) IsPublic(ctx context.Context, url string) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("remote is not probeable over http")
		return false
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("remote probe failed")
		return false
	}
	defer resp.Body.Close()

	log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("remote probe answered")
	return resp.StatusCode == http.StatusOK
}
