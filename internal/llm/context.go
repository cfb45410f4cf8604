package llm

import "context"

// Purpose labels a completion in logs and the LLM event table.
type Purpose string

const (
	PurposeGenerate Purpose = "quiz-generate"
	PurposeExplain  Purpose = "quiz-explain"
	PurposeSummary  Purpose = "quiz-summary"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKey struct{}

// WithPurpose attaches p to ctx.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose attached to ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
