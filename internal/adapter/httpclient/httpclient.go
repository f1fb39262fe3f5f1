package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jgivc/relmirror/internal/config"
)

// Statuses considered transient by the remote: the client retries them
// transparently before the poller's own retry policy ever sees a failure.
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// New builds the shared HTTP client: retry on transport errors and on the
// transient status set, with an optional proxy from config.
func New(cfg *config.HTTPConfig) (*http.Client, error) {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWaitMin.Value()
	rc.RetryWaitMax = cfg.RetryWaitMax.Value()
	rc.CheckRetry = checkRetry
	rc.HTTPClient.Timeout = cfg.Timeout.Value()

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("cannot parse proxy url: %w", err)
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		rc.HTTPClient.Transport = transport
	}

	return rc.StandardClient(), nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return true, nil
	}

	return slices.Contains(retryStatuses, resp.StatusCode), nil
}
