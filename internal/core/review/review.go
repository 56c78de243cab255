// Package review defines the book review domain types shared by the API
// client, the pager, and the UI.
package review

import (
	"encoding/json"
	"strings"
	"time"
)

// Review is a book review as returned by the remote service. ID and
// CreatedAt are assigned by the server; the client never mutates a review
// after it has been created.
type Review struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	ReviewerName string    `json:"reviewerName"`
	BodyText     string    `json:"bodyText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts the canonical field names as well as the legacy
// names used by older deployments of the service (reviewer, review, detail).
func (r *Review) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		URL          string `json:"url"`
		ReviewerName string `json:"reviewerName"`
		Reviewer     string `json:"reviewer"`
		BodyText     string `json:"bodyText"`
		Review       string `json:"review"`
		Detail       string `json:"detail"`
		CreatedAt    string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Review{
		ID:           raw.ID,
		Title:        raw.Title,
		URL:          raw.URL,
		ReviewerName: firstNonEmpty(raw.ReviewerName, raw.Reviewer),
		BodyText:     firstNonEmpty(raw.BodyText, raw.Review, raw.Detail),
	}

	if raw.CreatedAt != "" {
		// Servers disagree on precision; an unparseable timestamp is not
		// worth failing the whole page over.
		if t, err := time.Parse(time.RFC3339Nano, raw.CreatedAt); err == nil {
			r.CreatedAt = t
		}
	}

	return nil
}

// Draft is a review that has not been submitted yet.
type Draft struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ReviewerName string `json:"reviewerName"`
	BodyText     string `json:"bodyText"`
}

// Normalize returns a copy of the draft with surrounding whitespace trimmed
// from every field.
func (d Draft) Normalize() Draft {
	return Draft{
		Title:        strings.TrimSpace(d.Title),
		URL:          strings.TrimSpace(d.URL),
		ReviewerName: strings.TrimSpace(d.ReviewerName),
		BodyText:     strings.TrimSpace(d.BodyText),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
