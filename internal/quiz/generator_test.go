package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/quizbot/internal/llm"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestClient(mock *llm.MockProvider) *llm.Client {
	return llm.NewClient(mock, llm.WithSleeper(noSleep), llm.WithJitter(func() float64 { return 0 }))
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingIndexer struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
	err   error
}

func newRecordingIndexer(err error) *recordingIndexer {
	return &recordingIndexer{done: make(chan struct{}, 1), err: err}
}

func (r *recordingIndexer) Index(_ context.Context, userID, content string) error {
	r.mu.Lock()
	r.calls = append(r.calls, userID+":"+content)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func TestGenerator_BuildsQuizFromModelOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: oneQuestion})
	g := NewGenerator(newTestClient(mock), DefaultConfig(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "quiz-1" }))

	email := "Dear friend, thank you for your $500 gift."
	q, err := g.Generate(context.Background(), "user-1", email, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.QuizID != "quiz-1" || q.UserID != "user-1" || !q.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected quiz metadata %+v", q)
	}
	if q.EmailContext != email {
		t.Fatalf("email context not preserved: %q", q.EmailContext)
	}
	if len(q.Questions) != 1 || q.Questions[0].QuestionText != "X?" {
		t.Fatalf("unexpected questions %+v", q.Questions)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.MaxTokens != 5000 || req.Temperature != 0.7 {
		t.Fatalf("unexpected sampling parameters %+v", req)
	}
	prompt := req.Messages[0].Content
	if !strings.HasPrefix(prompt, generationSystemPrompt+"\n\n") {
		t.Fatal("expected system prompt to lead the message")
	}
	if !strings.Contains(prompt, "generate EXACTLY 1 multiple-choice questions") || !strings.Contains(prompt, email) {
		t.Fatal("prompt missing count or email")
	}
}

func TestGenerator_TruncatesEmailInPromptOnly(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: oneQuestion})
	cfg := DefaultConfig()
	cfg.EmailPromptLimit = 10
	g := NewGenerator(newTestClient(mock), cfg)

	email := "0123456789ABCDEFGHIJ"
	q, err := g.Generate(context.Background(), "user-1", email, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "0123456789...") || strings.Contains(prompt, "ABCDEFGHIJ") {
		t.Fatal("expected truncated email in prompt")
	}
	if q.EmailContext != email {
		t.Fatal("stored email context must not be truncated")
	}
}

func TestGenerator_BackendFailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider() // every call fails
	g := NewGenerator(newTestClient(mock), DefaultConfig())

	q, err := g.Generate(context.Background(), "user-1", "Please renew your pledge.", 3)
	if err != nil {
		t.Fatalf("generation must not fail for backend reasons: %v", err)
	}
	if len(q.Questions) != 3 || q.Questions[0].ID != "q1" {
		t.Fatalf("expected fallback questions, got %+v", q.Questions)
	}
	if mock.CallCount() != 5 {
		t.Fatalf("expected 5 attempts, got %d", mock.CallCount())
	}
}

func TestGenerator_Preconditions(t *testing.T) {
	g := NewGenerator(newTestClient(llm.NewMockProvider()), DefaultConfig())

	tests := []struct {
		name    string
		user    string
		email   string
		n       int
		wantErr error
	}{
		{"zero questions", "u", "email", 0, ErrInvalidQuestionCount},
		{"too many questions", "u", "email", 21, ErrInvalidQuestionCount},
		{"blank email", "u", "   ", 3, ErrMissingInput},
		{"blank user", "", "email", 3, ErrMissingInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), tt.user, tt.email, tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGenerator_IndexesEmailAsynchronously(t *testing.T) {
	ix := newRecordingIndexer(errors.New("index offline"))
	mock := llm.NewMockProvider(llm.MockResponse{Text: oneQuestion})
	g := NewGenerator(newTestClient(mock), DefaultConfig(), WithIndexer(ix))

	if _, err := g.Generate(context.Background(), "user-9", "Gala invite", 1); err != nil {
		t.Fatalf("indexing failure must not surface: %v", err)
	}

	select {
	case <-ix.done:
	case <-time.After(2 * time.Second):
		t.Fatal("indexer was not called")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(ix.calls) != 1 || ix.calls[0] != "user-9:Gala invite" {
		t.Fatalf("unexpected index calls %v", ix.calls)
	}
}

type blockingIndexer struct {
	release chan struct{}
	indexed atomic.Int32
}

func (b *blockingIndexer) Index(context.Context, string, string) error {
	<-b.release
	b.indexed.Add(1)
	return nil
}

func TestGenerator_WaitBlocksUntilIndexingDone(t *testing.T) {
	ix := &blockingIndexer{release: make(chan struct{})}
	mock := llm.NewMockProvider(llm.MockResponse{Text: oneQuestion}, llm.MockResponse{Text: oneQuestion})
	g := NewGenerator(newTestClient(mock), DefaultConfig(), WithIndexer(ix))

	for range 2 {
		if _, err := g.Generate(context.Background(), "user-1", "Thanks for giving.", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	waited := make(chan struct{})
	go func() {
		g.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while indexing was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(ix.release)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after indexing finished")
	}
	if got := ix.indexed.Load(); got != 2 {
		t.Fatalf("expected 2 indexed emails, got %d", got)
	}
}

func TestGenerator_WaitWithoutIndexer(t *testing.T) {
	g := NewGenerator(newTestClient(llm.NewMockProvider()), DefaultConfig())
	g.Wait()
}
