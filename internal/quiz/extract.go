package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// questionsArrayPattern rescues the questions array from otherwise
// malformed output. Greedy so nested option arrays stay inside the match.
var questionsArrayPattern = regexp.MustCompile(`(?s)"questions"\s*:\s*\[(.*)\]`)

// Extract turns raw model text into at most requested validated questions.
// It never fails: when nothing usable survives it returns the static bank
// truncated to requested, with Fallback set. The result depends only on
// the inputs.
func Extract(raw string, requested int) Extraction {
	if requested < 1 {
		return Extraction{Fallback: true}
	}

	candidates, ok := decodeCandidates(normalizeOutput(raw))
	if !ok || len(candidates) == 0 {
		return Extraction{Questions: FallbackQuestions(requested), Fallback: true}
	}

	var out Extraction
	seen := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		q, warns, keep := checkCandidate(i, c)
		out.Warnings = append(out.Warnings, warns...)
		if !keep {
			continue
		}
		// Answers are graded by id, so ids must be unique within a quiz.
		switch {
		case q.ID == "":
			out.Warnings = append(out.Warnings, ValidationWarning{Index: i, Message: "empty id, skipped"})
		case seen[q.ID]:
			out.Warnings = append(out.Warnings, ValidationWarning{
				Index:      i,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("duplicate id %q, skipped", q.ID),
			})
		default:
			seen[q.ID] = true
			out.Questions = append(out.Questions, q)
		}
	}

	if len(out.Questions) == 0 {
		out.Questions = FallbackQuestions(requested)
		out.Fallback = true
		return out
	}
	if len(out.Questions) > requested {
		out.Questions = out.Questions[:requested]
	}
	return out
}

// normalizeOutput strips code fences, flattens newlines and closes
// unbalanced braces.
func normalizeOutput(raw string) string {
	s := stripFence(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	// Truncated output usually stops mid-object.
	if missing := strings.Count(s, "{") - strings.Count(s, "}"); missing > 0 {
		s += strings.Repeat("}", missing)
	}
	return s
}

func stripFence(s string) string {
	for _, fence := range []string{"```json", "```"} {
		if _, after, found := strings.Cut(s, fence); found {
			body, _, _ := strings.Cut(after, "```")
			return strings.TrimSpace(body)
		}
	}
	return s
}

// decodeCandidates parses the questions array, first strictly and then by
// rescuing the array text on its own.
func decodeCandidates(s string) ([]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(s), &payload); err == nil {
		list, _ := payload["questions"].([]any)
		return list, true
	}

	m := questionsArrayPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal([]byte("["+m[1]+"]"), &list); err != nil {
		return nil, false
	}
	return list, true
}

// checkCandidate validates one decoded candidate. keep is false when the
// candidate must be skipped; warnings cover skips and lossy repairs.
func checkCandidate(index int, candidate any) (q Question, warns []ValidationWarning, keep bool) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return q, []ValidationWarning{{Index: index, Message: "candidate is not an object, skipped"}}, false
	}
	id := candidateID(obj["id"])
	warnf := func(format string, args ...any) {
		warns = append(warns, ValidationWarning{Index: index, QuestionID: id, Message: fmt.Sprintf(format, args...)})
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		warnf("missing fields: %s, skipped", strings.Join(missing, ", "))
		return q, warns, false
	}

	if opts, ok := obj["options"].([]any); ok && len(opts) != 4 {
		warnf("expected 4 options, got %d, skipped", len(opts))
		return q, warns, false
	}

	if err := validateCandidate(obj); err != nil {
		warnf("invalid field types: %v, skipped", err)
		return q, warns, false
	}

	q = Question{
		ID:           id,
		QuestionText: obj["question_text"].(string),
		Explanation:  obj["explanation"].(string),
	}
	for _, o := range obj["options"].([]any) {
		q.Options = append(q.Options, o.(string))
	}

	// Anything other than an exact letter, including "b" or " C ", becomes "A".
	if answer, _ := obj["correct_answer"].(string); isAnswerLetter(answer) {
		q.CorrectAnswer = answer
	} else {
		q.CorrectAnswer = "A"
		warnf("invalid correct_answer %v, replaced with \"A\"", obj["correct_answer"])
	}

	raw := obj["difficulty"].(string)
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		q.Difficulty = d
		if string(d) != raw {
			warnf("difficulty %q normalized to %q", raw, d)
		}
	default:
		q.Difficulty = DifficultyMedium
		warnf("invalid difficulty %q, replaced with %q", raw, DifficultyMedium)
	}
	return q, warns, true
}

func isAnswerLetter(s string) bool {
	return s == "A" || s == "B" || s == "C" || s == "D"
}

func candidateID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
