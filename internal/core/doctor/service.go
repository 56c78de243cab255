package doctor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ServiceCheck verifies the review service answers HTTP requests. Any
// response below 500 counts as reachable; an unauthenticated list request
// is expected to be refused.
type ServiceCheck struct {
	client  *http.Client
	baseURL string
	path    string
}

// NewServiceCheck creates a service check. client must not carry the
// session transport, a refused probe would otherwise end the session.
func NewServiceCheck(client *http.Client, baseURL, path string) *ServiceCheck {
	return &ServiceCheck{client: client, baseURL: baseURL, path: path}
}

func (c *ServiceCheck) Name() string { return "Service" }

func (c *ServiceCheck) Run(ctx context.Context) Result {
	r := Result{Name: c.Name()}

	code, target, err := c.probe(ctx)
	switch {
	case err != nil:
		r.fail("reachable", err.Error())
	case code >= http.StatusInternalServerError:
		r.warn("reachable", fmt.Sprintf("%s answered HTTP %d", target, code))
	default:
		r.pass("reachable", fmt.Sprintf("%s answered HTTP %d", target, code))
	}
	return r
}

func (c *ServiceCheck) probe(ctx context.Context) (int, string, error) {
	target, err := url.JoinPath(strings.TrimRight(c.baseURL, "/"), c.path)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, target, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, target, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, target, nil
}
