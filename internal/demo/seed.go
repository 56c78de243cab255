package demo

import (
	"fmt"

	"github.com/hay-kot/bookreview/internal/core/review"
)

// Demo account created by Seed.
const (
	DemoName     = "Demo Reader"
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
)

var seedBooks = []struct {
	title string
	url   string
}{
	{"The Go Programming Language", "https://www.gopl.io"},
	{"Concurrency in Go", "https://www.oreilly.com/library/view/concurrency-in-go/9781491941294/"},
	{"Designing Data-Intensive Applications", "https://dataintensive.net"},
	{"The Pragmatic Programmer", "https://pragprog.com/titles/tpp20/"},
	{"Structure and Interpretation of Computer Programs", "https://mitpress.mit.edu/sites/default/files/sicp/index.html"},
	{"A Philosophy of Software Design", "https://web.stanford.edu/~ouster/cgi-bin/book.php"},
	{"Site Reliability Engineering", "https://sre.google/sre-book/table-of-contents/"},
	{"Crafting Interpreters", "https://craftinginterpreters.com"},
}

var seedReviewers = []string{"alice", "bob", "carol", "dave", "erin"}

// Seed creates the demo account and n synthetic reviews. Reviews are added
// oldest first so the newest ends up at offset 0.
func Seed(s *Store, n int) error {
	if err := s.CreateUser(DemoName, DemoEmail, DemoPassword); err != nil {
		return fmt.Errorf("seed demo account: %w", err)
	}

	for i := range n {
		book := seedBooks[i%len(seedBooks)]
		s.AddReview(review.Draft{
			Title:        fmt.Sprintf("%s (#%d)", book.title, i+1),
			URL:          book.url,
			ReviewerName: seedReviewers[i%len(seedReviewers)],
			BodyText: fmt.Sprintf(
				"Review **%d** of %d.\n\nRead it over %d evenings. Worth the time.",
				i+1, n, (i%7)+2,
			),
		})
	}

	return nil
}
