// Package api is the HTTP client for the remote book review service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/bookreview/internal/core/config"
	"github.com/hay-kot/bookreview/internal/core/logging"
	"github.com/hay-kot/bookreview/internal/core/review"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Header names shared with the session transport and the demo server.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTotalCount = "X-Total-Count"
)

// Config holds the settings needed to reach the service.
type Config struct {
	BaseURL   string
	Endpoints config.Endpoints
}

// Client talks to the book review service. It does not know about tokens:
// the http.Client's transport attaches credentials to outgoing requests.
type Client struct {
	baseURL   string
	endpoints config.Endpoints
	http      *http.Client
	log       zerolog.Logger
}

// New creates a client. A nil hc uses http.DefaultClient.
func New(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: cfg.Endpoints,
		http:      hc,
		log:       logging.Component("api"),
	}
}

type publicKey struct{}

// withPublic marks requests that must not carry the session's credentials,
// such as sign-in, where a 401 means bad input rather than an expired
// session.
func withPublic(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicKey{}, true)
}

// IsPublic reports whether the request context was marked as not needing
// the session's credentials.
func IsPublic(ctx context.Context) bool {
	v, _ := ctx.Value(publicKey{}).(bool)
	return v
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// message extracts a human readable message from an error body, if any.
func (r *response) message() string {
	var eb errorBody
	if err := json.Unmarshal(r.body, &eb); err != nil {
		return ""
	}
	return eb.text()
}

// do sends one request. Transport failures are returned as *NetworkError;
// any HTTP response, including non-2xx, is returned for the caller to map.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, reqBody any, header http.Header) (*response, error) {
	rid := logging.GetRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = logging.WithRequestID(ctx, rid)
	}
	ctx = logging.WithOperation(ctx, op)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, rid)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Ctx(ctx).Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.log.Debug().Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// statusError maps a non-2xx response from an authenticated endpoint.
func statusError(op string, r *response) error {
	msg := r.message()
	if r.status == http.StatusUnauthorized {
		return &AuthError{Reason: ReasonExpired, Message: msg, Err: ErrUnauthorized}
	}
	return &FetchError{Op: op, Status: r.status, Message: msg}
}

// authFailure maps a failed sign-in or registration.
func authFailure(op string, err error) error {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return &AuthError{Reason: ReasonNetwork, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (string, error) {
	const op = "sign in"

	resp, err := c.do(withPublic(ctx), op, http.MethodPost, c.endpoints.SignIn, nil, creds, nil)
	if err != nil {
		return "", authFailure(op, err)
	}

	switch {
	case resp.ok():
		var tr tokenResponse
		if err := json.Unmarshal(resp.body, &tr); err != nil {
			return "", &AuthError{Reason: ReasonServer, Err: &FetchError{Op: op, Message: "malformed response", Err: err}}
		}
		if tr.Token == "" {
			return "", &AuthError{Reason: ReasonServer, Message: "no token in response"}
		}
		return tr.Token, nil
	case resp.status == http.StatusBadRequest,
		resp.status == http.StatusUnauthorized,
		resp.status == http.StatusForbidden,
		resp.status == http.StatusNotFound:
		return "", &AuthError{Reason: ReasonInvalidCredentials, Message: resp.message()}
	default:
		msg := resp.message()
		return "", &AuthError{Reason: ReasonServer, Message: msg, Err: &FetchError{Op: op, Status: resp.status, Message: msg}}
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) (RegisterResult, error) {
	const op = "register"

	resp, err := c.do(withPublic(ctx), op, http.MethodPost, c.endpoints.Register, nil, reg, nil)
	if err != nil {
		return RegisterResult{}, authFailure(op, err)
	}

	switch {
	case resp.ok():
		var result RegisterResult
		if len(bytes.TrimSpace(resp.body)) > 0 {
			if err := json.Unmarshal(resp.body, &result); err != nil {
				return RegisterResult{}, &AuthError{Reason: ReasonServer, Err: &FetchError{Op: op, Message: "malformed response", Err: err}}
			}
		}
		return result, nil
	case resp.status >= 400 && resp.status < 500:
		return RegisterResult{}, &AuthError{Reason: ReasonInvalidCredentials, Message: resp.message()}
	default:
		msg := resp.message()
		return RegisterResult{}, &AuthError{Reason: ReasonServer, Message: msg, Err: &FetchError{Op: op, Status: resp.status, Message: msg}}
	}
}

// ListReviews fetches the page of reviews starting at offset.
func (c *Client) ListReviews(ctx context.Context, offset, limit int) (ReviewPage, error) {
	const op = "load reviews"

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.do(ctx, op, http.MethodGet, c.endpoints.Books, query, nil, nil)
	if err != nil {
		return ReviewPage{}, err
	}
	if !resp.ok() {
		return ReviewPage{}, statusError(op, resp)
	}

	page, err := decodePage(resp, offset, limit)
	if err != nil {
		return ReviewPage{}, &FetchError{Op: op, Message: "malformed response", Err: err}
	}
	return page, nil
}

// decodePage accepts an envelope with a total, a bare array with the total
// in a header, or a bare array alone.
func decodePage(resp *response, offset, limit int) (ReviewPage, error) {
	page := ReviewPage{Offset: offset, Limit: limit}

	body := bytes.TrimSpace(resp.body)
	if len(body) == 0 {
		return page, errors.New("empty body")
	}

	switch body[0] {
	case '{':
		var env reviewEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return page, err
		}
		page.Reviews = env.Reviews
		if env.TotalCount != nil {
			page.TotalCount = *env.TotalCount
			page.TotalKnown = true
		}
	case '[':
		if err := json.Unmarshal(body, &page.Reviews); err != nil {
			return page, err
		}
		if raw := resp.header.Get(HeaderTotalCount); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
				page.TotalCount = n
				page.TotalKnown = true
			}
		}
	default:
		return page, fmt.Errorf("unexpected body starting with %q", body[0])
	}

	if page.Reviews == nil {
		page.Reviews = []review.Review{}
	}
	if !page.TotalKnown {
		page.TotalCount = offset + len(page.Reviews)
	}

	return page, nil
}

// CreateReview posts a new review and returns it as stored by the server.
func (c *Client) CreateReview(ctx context.Context, draft review.Draft) (review.Review, error) {
	const op = "post review"

	resp, err := c.do(ctx, op, http.MethodPost, c.endpoints.Books, nil, draft, nil)
	if err != nil {
		return review.Review{}, err
	}
	if !resp.ok() {
		return review.Review{}, statusError(op, resp)
	}

	var created review.Review
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return review.Review{}, &FetchError{Op: op, Message: "malformed response", Err: err}
	}
	return created, nil
}

// Logout asks the server to revoke token. It is a no-op when no logout
// endpoint is configured. A 401 means the token is already dead and is not
// an error.
func (c *Client) Logout(ctx context.Context, token string) error {
	const op = "sign out"

	if c.endpoints.Logout == "" {
		return nil
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(withPublic(ctx), op, http.MethodPost, c.endpoints.Logout, nil, nil, header)
	if err != nil {
		return err
	}
	if resp.ok() || resp.status == http.StatusUnauthorized {
		return nil
	}
	return &FetchError{Op: op, Status: resp.status, Message: resp.message()}
}
