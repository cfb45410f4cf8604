package quiz

import (
	"reflect"
	"strings"
	"testing"
)

const oneQuestion = `{"questions":[{"id":"q1","question_text":"X?","options":["A) 1","B) 2","C) 3","D) 4"],"correct_answer":"A","explanation":"...","difficulty":"easy"}]}`

func candidateJSON(id, answer string, options int) string {
	opts := make([]string, options)
	for i := range opts {
		opts[i] = `"` + string(rune('A'+i)) + `) option"`
	}
	return `{"id":"` + id + `","question_text":"Question ` + id + `?","options":[` + strings.Join(opts, ",") +
		`],"correct_answer":"` + answer + `","explanation":"Because.","difficulty":"medium"}`
}

func TestExtract_WellFormedQuestionUnmodified(t *testing.T) {
	ex := Extract(oneQuestion, 1)

	want := Question{
		ID:            "q1",
		QuestionText:  "X?",
		Options:       []string{"A) 1", "B) 2", "C) 3", "D) 4"},
		CorrectAnswer: "A",
		Explanation:   "...",
		Difficulty:    DifficultyEasy,
	}
	if ex.Fallback {
		t.Fatal("did not expect fallback")
	}
	if len(ex.Questions) != 1 || !reflect.DeepEqual(ex.Questions[0], want) {
		t.Fatalf("unexpected questions %+v", ex.Questions)
	}
	if len(ex.Warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", ex.Warnings)
	}
}

func TestExtract_MalformedOutputUsesFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "not json at all"},
		{"empty", ""},
		{"truncated mid-string", `{"questions": [{"id": "q1", "question_text": "Wha`},
		{"empty array", `{"questions": []}`},
		{"no questions key", `{"items": [1, 2]}`},
		{"top-level array", `[{"id": "q1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := Extract(tt.raw, 3)
			if !ex.Fallback {
				t.Fatal("expected fallback")
			}
			if !reflect.DeepEqual(ex.Questions, fallbackBank[:3]) {
				t.Fatalf("expected first 3 fallback questions, got %+v", ex.Questions)
			}
		})
	}
}

func TestExtract_FallbackCappedAtBankSize(t *testing.T) {
	ex := Extract("nope", 12)
	if len(ex.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(ex.Questions))
	}
	for i, q := range ex.Questions {
		if q.ID != fallbackBank[i].ID {
			t.Fatalf("question %d out of bank order: %s", i, q.ID)
		}
	}
}

func TestExtract_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "Here you go:\n```json\n" + oneQuestion + "\n```\nEnjoy!"},
		{"bare fence", "```\n" + oneQuestion + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := Extract(tt.raw, 1)
			if ex.Fallback || len(ex.Questions) != 1 || ex.Questions[0].QuestionText != "X?" {
				t.Fatalf("fence not stripped: %+v", ex)
			}
		})
	}
}

func TestExtract_RepairsMissingClosingBrace(t *testing.T) {
	raw := `{"questions": [` + candidateJSON("q1", "B", 4) + `]`
	ex := Extract(raw, 1)
	if ex.Fallback {
		t.Fatal("expected brace repair to succeed")
	}
	if ex.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected answer %q", ex.Questions[0].CorrectAnswer)
	}
}

func TestExtract_NewlinesInsideStrings(t *testing.T) {
	raw := "{\"questions\": [{\"id\": \"q1\", \"question_text\": \"Line one\nline two?\", " +
		"\"options\": [\"A) a\", \"B) b\", \"C) c\", \"D) d\"], \"correct_answer\": \"C\", " +
		"\"explanation\": \"e\r\n\", \"difficulty\": \"hard\"}]}"
	ex := Extract(raw, 1)
	if ex.Fallback {
		t.Fatal("expected newline flattening to make output parseable")
	}
	if ex.Questions[0].QuestionText != "Line one line two?" {
		t.Fatalf("unexpected text %q", ex.Questions[0].QuestionText)
	}
}

func TestExtract_RegexRescue(t *testing.T) {
	// Trailing garbage after the object breaks the strict parse.
	raw := `{"questions": [` + candidateJSON("q1", "A", 4) + `,` + candidateJSON("q2", "D", 4) + `]} trailing words`
	ex := Extract(raw, 5)
	if ex.Fallback {
		t.Fatal("expected regex rescue to succeed")
	}
	if len(ex.Questions) != 2 || ex.Questions[1].CorrectAnswer != "D" {
		t.Fatalf("unexpected questions %+v", ex.Questions)
	}
}

func TestExtract_SkipsInvalidCandidates(t *testing.T) {
	raw := `{"questions": [` +
		`{"id": "q0", "question_text": "missing stuff"},` +
		candidateJSON("q1", "A", 3) + `,` +
		`"just a string",` +
		`{"id": "q3", "question_text": 7, "options": ["A) a","B) b","C) c","D) d"], "correct_answer": "A", "explanation": "", "difficulty": "easy"},` +
		candidateJSON("q4", "B", 4) +
		`]}`

	ex := Extract(raw, 5)
	if ex.Fallback {
		t.Fatal("did not expect fallback")
	}
	if len(ex.Questions) != 1 || ex.Questions[0].ID != "q4" {
		t.Fatalf("expected only q4 to survive, got %+v", ex.Questions)
	}
	if len(ex.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %+v", ex.Warnings)
	}
	if !strings.Contains(ex.Warnings[0].Message, "options") || ex.Warnings[0].QuestionID != "q0" {
		t.Fatalf("expected missing-fields warning for q0, got %+v", ex.Warnings[0])
	}
	if !strings.Contains(ex.Warnings[1].Message, "expected 4 options, got 3") {
		t.Fatalf("unexpected warning %+v", ex.Warnings[1])
	}
	if ex.Warnings[2].Index != 2 {
		t.Fatalf("expected non-object warning at index 2, got %+v", ex.Warnings[2])
	}
	if ex.Warnings[3].QuestionID != "q3" {
		t.Fatalf("expected type warning for q3, got %+v", ex.Warnings[3])
	}
}

func TestExtract_AllInvalidUsesFallbackButKeepsWarnings(t *testing.T) {
	raw := `{"questions": [` + candidateJSON("q1", "A", 2) + `]}`
	ex := Extract(raw, 2)
	if !ex.Fallback {
		t.Fatal("expected fallback")
	}
	if len(ex.Questions) != 2 || len(ex.Warnings) != 1 {
		t.Fatalf("unexpected extraction %+v", ex)
	}
}

func TestExtract_CoercesInvalidAnswer(t *testing.T) {
	raw := `{"questions": [` + candidateJSON("q1", "E", 4) + `,` + candidateJSON("q2", " c ", 4) + `,` +
		candidateJSON("q3", "b", 4) + `,` + candidateJSON("q4", "D", 4) + `]}`
	ex := Extract(raw, 4)

	for i, want := range []string{"A", "A", "A", "D"} {
		if got := ex.Questions[i].CorrectAnswer; got != want {
			t.Fatalf("question %d: expected %q, got %q", i, want, got)
		}
	}
	if len(ex.Warnings) != 3 {
		t.Fatalf("expected a warning per coerced answer, got %+v", ex.Warnings)
	}
	for i, id := range []string{"q1", "q2", "q3"} {
		if ex.Warnings[i].QuestionID != id || !strings.Contains(ex.Warnings[i].Message, `replaced with "A"`) {
			t.Fatalf("unexpected warning %+v", ex.Warnings[i])
		}
	}
}

func TestExtract_SkipsDuplicateIDs(t *testing.T) {
	raw := `{"questions": [` + candidateJSON("q1", "B", 4) + `,` + candidateJSON("q1", "C", 4) + `,` +
		candidateJSON("", "D", 4) + `,` + candidateJSON("q2", "A", 4) + `]}`
	ex := Extract(raw, 4)

	if ex.Fallback {
		t.Fatal("did not expect fallback")
	}
	if len(ex.Questions) != 2 || ex.Questions[0].ID != "q1" || ex.Questions[1].ID != "q2" {
		t.Fatalf("expected q1 and q2 only, got %+v", ex.Questions)
	}
	if ex.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("expected first q1 to win, got %q", ex.Questions[0].CorrectAnswer)
	}
	if len(ex.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", ex.Warnings)
	}
	if ex.Warnings[0].Index != 1 || !strings.Contains(ex.Warnings[0].Message, "duplicate id") {
		t.Fatalf("unexpected duplicate warning %+v", ex.Warnings[0])
	}
	if ex.Warnings[1].Index != 2 || !strings.Contains(ex.Warnings[1].Message, "empty id") {
		t.Fatalf("unexpected empty-id warning %+v", ex.Warnings[1])
	}
}

func TestExtract_RepairsDifficulty(t *testing.T) {
	withDifficulty := func(id, d string) string {
		return strings.Replace(candidateJSON(id, "A", 4), `"difficulty":"medium"`, `"difficulty":"`+d+`"`, 1)
	}
	raw := `{"questions": [` + withDifficulty("q1", "Extreme") + `,` + withDifficulty("q2", " Hard") + `,` +
		withDifficulty("q3", "easy") + `]}`
	ex := Extract(raw, 3)

	want := []Difficulty{DifficultyMedium, DifficultyHard, DifficultyEasy}
	for i, d := range want {
		if ex.Questions[i].Difficulty != d {
			t.Fatalf("question %d: expected %q, got %q", i, d, ex.Questions[i].Difficulty)
		}
	}
	if len(ex.Warnings) != 2 || ex.Warnings[0].QuestionID != "q1" || ex.Warnings[1].QuestionID != "q2" {
		t.Fatalf("expected warnings for q1 and q2, got %+v", ex.Warnings)
	}
	if !strings.Contains(ex.Warnings[0].Message, `replaced with "medium"`) {
		t.Fatalf("unexpected warning %+v", ex.Warnings[0])
	}
}

func TestExtract_NumericIDAccepted(t *testing.T) {
	raw := `{"questions": [{"id": 7, "question_text": "Q?", "options": ["A) a","B) b","C) c","D) d"], "correct_answer": "B", "explanation": "x", "difficulty": "easy"}]}`
	ex := Extract(raw, 1)
	if ex.Fallback || ex.Questions[0].ID != "7" {
		t.Fatalf("unexpected extraction %+v", ex)
	}
}

func TestExtract_TruncatesToRequested(t *testing.T) {
	var parts []string
	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		parts = append(parts, candidateJSON(id, "A", 4))
	}
	raw := `{"questions": [` + strings.Join(parts, ",") + `]}`

	ex := Extract(raw, 2)
	if len(ex.Questions) != 2 || ex.Questions[0].ID != "q1" || ex.Questions[1].ID != "q2" {
		t.Fatalf("expected first two questions in order, got %+v", ex.Questions)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []string{oneQuestion, "garbage", `{"questions": [` + candidateJSON("q1", "Z", 4) + `]`}
	for _, raw := range inputs {
		a, b := Extract(raw, 3), Extract(raw, 3)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Extract not deterministic for %q", raw)
		}
	}
}

func TestExtract_ZeroRequested(t *testing.T) {
	ex := Extract(oneQuestion, 0)
	if len(ex.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(ex.Questions))
	}
}

func TestFallbackQuestions_ReturnsCopies(t *testing.T) {
	qs := FallbackQuestions(1)
	qs[0].Options[0] = "mutated"
	if fallbackBank[0].Options[0] == "mutated" {
		t.Fatal("fallback bank was mutated through returned slice")
	}
}
