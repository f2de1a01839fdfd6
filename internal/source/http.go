package source

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTPSource downloads a document with a fasthttp client
type HTTPSource struct {
	URL     string
	Timeout time.Duration
	Client  *fasthttp.Client
}

// NewHTTPSource creates an HTTP source. A zero timeout uses DefaultTimeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		URL:     url,
		Timeout: timeout,
		Client: &fasthttp.Client{
			Name:                "paysplit",
			MaxIdleConnDuration: 90 * time.Second,
		},
	}
}

// Fetch performs a GET and returns the body. The context deadline, when
// earlier than the configured timeout, wins.
func (hs *HTTPSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	deadline := time.Now().Add(hs.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(hs.URL)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := hs.Client.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("GET %s: %w", hs.URL, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return "", fmt.Errorf("GET %s: %w %d", hs.URL, ErrStatus, status)
	}

	return string(resp.Body()), nil
}

// Name returns the URL
func (hs *HTTPSource) Name() string {
	return hs.URL
}
