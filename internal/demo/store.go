package demo

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hay-kot/bookreview/internal/core/review"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type user struct {
	name  string
	email string
	hash  []byte
}

// Store is the in-memory state behind the demo server: accounts, live
// tokens, and reviews kept newest first.
type Store struct {
	mu      sync.RWMutex
	cost    int
	now     func() time.Time
	users   map[string]user   // by lowercased email
	tokens  map[string]string // token -> email
	reviews []review.Review
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) StoreOption {
	return func(s *Store) { s.cost = cost }
}

// WithClock overrides the time source used for review timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		users:  make(map[string]user),
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers an account.
func (s *Store) CreateUser(name, email, password string) error {
	key := strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; ok {
		return ErrEmailTaken
	}
	s.users[key] = user{name: strings.TrimSpace(name), email: key, hash: hash}
	return nil
}

// Authenticate checks credentials and issues a new bearer token.
func (s *Store) Authenticate(email, password string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	u, ok := s.users[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.tokens[token] = key
	s.mu.Unlock()

	return token, nil
}

// Lookup returns the email of the account that owns token.
func (s *Store) Lookup(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.tokens[token]
	return email, ok
}

// Revoke invalidates a token. Unknown tokens are ignored.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// RevokeAll invalidates every token, simulating a server-side session reset.
func (s *Store) RevokeAll() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

// AddReview stores a review ahead of all existing ones.
func (s *Store) AddReview(d review.Draft) review.Review {
	d = d.Normalize()
	r := review.Review{
		ID:           uuid.NewString(),
		Title:        d.Title,
		URL:          d.URL,
		ReviewerName: d.ReviewerName,
		BodyText:     d.BodyText,
		CreatedAt:    s.now().UTC(),
	}

	s.mu.Lock()
	s.reviews = append([]review.Review{r}, s.reviews...)
	s.mu.Unlock()

	return r
}

// Page returns up to limit reviews starting at offset, and the collection
// size.
func (s *Store) Page(offset, limit int) ([]review.Review, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.reviews)
	if offset >= total {
		return []review.Review{}, total
	}

	end := min(offset+limit, total)
	out := make([]review.Review, end-offset)
	copy(out, s.reviews[offset:end])
	return out, total
}

// Count returns the number of stored reviews.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
