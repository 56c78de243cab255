package api

import "github.com/hay-kot/bookreview/internal/core/review"

// Credentials is the sign-in request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account creation request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is the outcome of a successful registration. Token is set
// only by deployments that sign the new user in directly.
type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ReviewPage is one server page of reviews.
type ReviewPage struct {
	Reviews []review.Review
	Offset  int
	Limit   int

	// TotalCount is the size of the whole collection when TotalKnown is
	// true. Otherwise it is Offset+len(Reviews), a lower bound.
	TotalCount int
	TotalKnown bool
}

type tokenResponse struct {
	Token string `json:"token"`
}

type reviewEnvelope struct {
	Reviews    []review.Review `json:"reviews"`
	TotalCount *int            `json:"totalCount"`
}

// errorBody covers the error shapes used by the deployments of the service.
type errorBody struct {
	Message        string `json:"message"`
	Error          string `json:"error"`
	ErrorMessageEN string `json:"ErrorMessageEN"`
	ErrorMessageJP string `json:"ErrorMessageJP"`
}

func (e errorBody) text() string {
	for _, s := range []string{e.Message, e.ErrorMessageEN, e.Error, e.ErrorMessageJP} {
		if s != "" {
			return s
		}
	}
	return ""
}
