// Package index keeps a per-user record of donor emails and answers naive
// similarity queries over them.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/abhisek/quizbot/internal/email"
	"github.com/abhisek/quizbot/internal/store"
)

// DefaultSearchLimit is used when Search is called with k <= 0.
const DefaultSearchLimit = 5

// Store is the persistence the index needs.
type Store interface {
	SaveEmail(ctx context.Context, rec store.EmailRecord) (string, error)
	ListEmails(ctx context.Context, userID string, limit int) ([]store.EmailRecord, error)
}

// Indexer stores emails and ranks them by term overlap with a query.
type Indexer struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Indexer backed by s.
func New(s Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Indexer{store: s, logger: logger, now: time.Now}
}

// Index parses content and stores it for userID.
func (ix *Indexer) Index(ctx context.Context, userID, content string) error {
	p := email.Parse(content)
	body := email.Sanitize(p.Content)
	if body == "" {
		return fmt.Errorf("index email for %s: empty content", userID)
	}
	id, err := ix.store.SaveEmail(ctx, store.EmailRecord{
		UserID:    userID,
		Subject:   p.Subject,
		Sender:    p.Sender,
		Content:   body,
		Category:  string(email.Categorize(body)),
		CreatedAt: ix.now(),
	})
	if err != nil {
		return fmt.Errorf("index email for %s: %w", userID, err)
	}
	ix.logger.Debug("email indexed", "user_id", userID, "email_id", id)
	return nil
}

// Match is a search hit.
type Match struct {
	Email store.EmailRecord `json:"email"`
	Score float64           `json:"score"`
}

// Search returns up to k of userID's emails sharing terms with query, best
// first. Score is the fraction of distinct query terms found in the email.
// Ties keep the newer email first.
func (ix *Indexer) Search(ctx context.Context, userID, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultSearchLimit
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []Match{}, nil
	}

	emails, err := ix.store.ListEmails(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("search emails: %w", err)
	}

	matches := []Match{}
	for _, e := range emails {
		doc := tokenize(e.Subject + " " + e.Content)
		hits := 0
		for t := range terms {
			if doc[t] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, Match{Email: e, Score: float64(hits) / float64(len(terms))})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// stopwords are skipped when tokenizing.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "for": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "our": true, "the": true,
	"to": true, "we": true, "with": true, "you": true, "your": true,
}

func tokenize(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) < 2 || stopwords[w] {
			continue
		}
		out[w] = true
	}
	return out
}
