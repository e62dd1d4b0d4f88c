package health

import (
	"context"
	"net/http"
	"time"
)

// HTTPChecker checks reachability of an upstream HTTP endpoint.
// Any completed round-trip counts as up; status codes are not inspected
// because auth-protected endpoints legitimately answer 401 to a bare GET.
type HTTPChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker that performs a GET against url.
func NewHTTPChecker(name, url string) *HTTPChecker {
	return &HTTPChecker{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *HTTPChecker) Name() string {
	return c.name
}

func (c *HTTPChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{Status: StatusDown, Message: err.Error()}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: StatusDown, Message: err.Error()}
	}
	defer resp.Body.Close()

	return Result{Status: StatusUp, Message: time.Since(start).Round(time.Millisecond).String()}
}
