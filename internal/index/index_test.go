package index

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

var _ quiz.EmailIndexer = (*Indexer)(nil)

func newTestIndexer(t *testing.T) (*Indexer, *store.Store) {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ix := New(s, nil)
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ix.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return ix, s
}

func TestIndexParsesAndCategorizes(t *testing.T) {
	ix, s := newTestIndexer(t)
	ctx := context.Background()

	raw := "Subject: Spring Gala\nFrom: events@hope.org\n\nPlease join us at our annual event."
	require.NoError(t, ix.Index(ctx, "alice", raw))

	emails, err := s.ListEmails(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, emails, 1)

	assert.Equal(t, "Spring Gala", emails[0].Subject)
	assert.Equal(t, "events@hope.org", emails[0].Sender)
	assert.Equal(t, "Please join us at our annual event.", emails[0].Content)
	assert.Equal(t, "event_invitation", emails[0].Category)
}

func TestIndexRejectsEmptyContent(t *testing.T) {
	ix, _ := newTestIndexer(t)
	assert.Error(t, ix.Index(context.Background(), "alice", "   \n "))
}

func TestSearchRanksByOverlap(t *testing.T) {
	ix, _ := newTestIndexer(t)
	ctx := context.Background()

	for _, body := range []string{
		"Your donation bought school supplies for 30 children.",
		"Volunteer shifts are open at the food bank.",
		"Thanks to your donation the food bank served 500 families.",
	} {
		require.NoError(t, ix.Index(ctx, "alice", body))
	}
	require.NoError(t, ix.Index(ctx, "bob", "Food bank donation receipt."))

	got, err := ix.Search(ctx, "alice", "food bank donation", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Contains(t, got[0].Email.Content, "served 500 families")
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	// "food bank" matches two of three terms; "donation" alone matches one.
	assert.Contains(t, got[1].Email.Content, "Volunteer shifts")
	for _, m := range got {
		assert.Equal(t, "alice", m.Email.UserID)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix, _ := newTestIndexer(t)
	got, err := ix.Search(context.Background(), "alice", "the and of", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenize(t *testing.T) {
	got := tokenize("The Annual-Gala, 2026! a x")
	assert.Equal(t, map[string]bool{"annual": true, "gala": true, "2026": true}, got)
}
