package session

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/logging"
)

// Transport attaches the session's bearer token to outgoing requests and
// ends the session when the server answers 401.
type Transport struct {
	m    *Manager
	base http.RoundTripper
}

// Transport wraps base (http.DefaultTransport when nil) with session
// handling.
func (m *Manager) Transport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{m: m, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Public requests and requests carrying their own credentials pass
	// through untouched.
	if api.IsPublic(ctx) || req.Header.Get("Authorization") != "" {
		return t.base.RoundTrip(req)
	}

	token, ok := t.m.Token(ctx)

	out := req.Clone(ctx)
	if ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if out.Header.Get(api.HeaderRequestID) == "" {
		rid := logging.GetRequestID(ctx)
		if rid == "" {
			rid = uuid.NewString()
		}
		out.Header.Set(api.HeaderRequestID, rid)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && ok {
		t.m.Invalidate(ctx, token)
	}

	return resp, nil
}
