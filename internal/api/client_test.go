package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/bookreview/internal/core/config"
	"github.com/hay-kot/bookreview/internal/core/review"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	endpoints := config.DefaultConfig().API.Endpoints
	endpoints.Logout = "/auth/logout"
	return New(Config{BaseURL: srv.URL + "/", Endpoints: endpoints}, srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/signin", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, Credentials{Email: "a@b.com", Password: "secret1"}, creds)

		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1"})
	})

	token, err := client.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestSignIn_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		reason AuthReason
		msg    string
	}{
		{"bad request", http.StatusBadRequest, map[string]string{"ErrorMessageEN": "bad input"}, ReasonInvalidCredentials, "bad input"},
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "wrong password"}, ReasonInvalidCredentials, "wrong password"},
		{"forbidden", http.StatusForbidden, nil, ReasonInvalidCredentials, ""},
		{"not found", http.StatusNotFound, nil, ReasonInvalidCredentials, ""},
		{"server error", http.StatusInternalServerError, map[string]string{"error": "db down"}, ReasonServer, "db down"},
		{"missing token", http.StatusOK, map[string]string{}, ReasonServer, "no token in response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.reason, authErr.Reason)
			assert.Equal(t, tt.msg, authErr.Message)
			assert.False(t, errors.Is(err, ErrUnauthorized), "sign-in failures are not session expiry")
		})
	}
}

func TestSignIn_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(Config{BaseURL: base, Endpoints: config.DefaultConfig().API.Endpoints}, nil)
	_, err := client.SignIn(context.Background(), Credentials{Email: "a@b.com", Password: "x"})

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonNetwork, authErr.Reason)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestRegister(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)

		var reg Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		if reg.Email == "taken@b.com" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "user created"})
	})

	result, err := client.Register(context.Background(), Registration{Name: "R", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user created", result.Message)
	assert.Empty(t, result.Token)

	_, err = client.Register(context.Background(), Registration{Name: "R", Email: "taken@b.com", Password: "secret1"})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonInvalidCredentials, authErr.Reason)
	assert.Equal(t, "email already registered", authErr.Message)
}

func TestListReviews_Envelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"reviews":    []map[string]string{{"id": "11", "title": "A"}, {"id": "12", "title": "B"}},
			"totalCount": 12,
		})
	})

	page, err := client.ListReviews(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 2)
	assert.Equal(t, 12, page.TotalCount)
	assert.True(t, page.TotalKnown)
	assert.Equal(t, 10, page.Offset)
	assert.Equal(t, 5, page.Limit)
}

func TestListReviews_ArrayWithHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderTotalCount, "42")
		writeJSON(w, http.StatusOK, []map[string]string{{"id": "1", "reviewer": "legacy", "review": "text"}})
	})

	page, err := client.ListReviews(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "legacy", page.Reviews[0].ReviewerName)
	assert.Equal(t, 42, page.TotalCount)
	assert.True(t, page.TotalKnown)
}

func TestListReviews_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]string{{"id": "1"}, {"id": "2"}, {"id": "3"}})
	})

	page, err := client.ListReviews(context.Background(), 20, 10)
	require.NoError(t, err)
	assert.False(t, page.TotalKnown)
	assert.Equal(t, 23, page.TotalCount)
}

func TestListReviews_EmptyCollection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []review.Review{})
	})

	page, err := client.ListReviews(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Reviews)
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 0, page.TotalCount)
}

func TestListReviews_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, ReasonExpired, authErr.Reason)
				assert.True(t, IsAuthError(err))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			},
			check: func(t *testing.T, err error) {
				var fetchErr *FetchError
				require.ErrorAs(t, err, &fetchErr)
				assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
				assert.Equal(t, "boom", fetchErr.Message)
				assert.False(t, IsAuthError(err))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("<html>oops</html>"))
			},
			check: func(t *testing.T, err error) {
				var fetchErr *FetchError
				require.ErrorAs(t, err, &fetchErr)
				assert.Equal(t, 0, fetchErr.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.ListReviews(context.Background(), 0, 10)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCreateReview(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var draft review.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":           "new-1",
			"title":        draft.Title,
			"url":          draft.URL,
			"reviewerName": draft.ReviewerName,
			"bodyText":     draft.BodyText,
			"createdAt":    "2025-01-02T03:04:05Z",
		})
	})

	created, err := client.CreateReview(context.Background(), review.Draft{
		Title: "Go", URL: "https://go.dev", ReviewerName: "gopher", BodyText: "great",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "gopher", created.ReviewerName)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestLogout(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Logout(context.Background(), "tok-1"))
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestLogout_NoEndpoint(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, Endpoints: config.DefaultConfig().API.Endpoints}, srv.Client())
	require.NoError(t, client.Logout(context.Background(), "tok"))
	assert.False(t, called)
}
