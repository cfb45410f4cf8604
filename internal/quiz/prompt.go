package quiz

import (
	"bytes"
	"math"
	"strconv"
	"text/template"
)

const generationSystemPrompt = `You are an expert educational assessment designer specializing in non-profit management, donor relations, and fundraising.

Your task is to create challenging, thought-provoking multiple-choice questions that test deep understanding, not just recall.

CRITICAL RULES:
1. Return ONLY valid JSON - no markdown, no code blocks, no explanations
2. Questions must be clear, specific, and challenging
3. Explanations must be detailed and educational
4. Focus on non-profit best practices and ethics
5. Use simple, direct language
6. Ensure all strings are properly closed`

var generationTemplate = template.Must(template.New("generate").Parse(`Based on this donor email, generate EXACTLY {{.Count}} multiple-choice questions about non-profit management, donor relations, fundraising practices, and ethical considerations in valid JSON format.

=== EMAIL CONTENT ===
{{.Email}}
=== END EMAIL ===

Return ONLY a JSON object in this EXACT format (no markdown, no backticks, no other text):

{
    "questions": [
        {
            "id": "q1",
            "question_text": "Based on the email, what is the primary purpose of the donation acknowledgment letter?",
            "options": [
                "A) To provide tax documentation for the donor",
                "B) To request additional donations",
                "C) To promote upcoming events",
                "D) To advertise the organization's programs"
            ],
            "correct_answer": "A",
            "explanation": "Detailed explanation of why A is correct and why other options are incorrect. Should be 2-3 sentences focusing on non-profit best practices.",
            "difficulty": "medium"
        }
    ]
}

REQUIREMENTS:
- Generate EXACTLY {{.Count}} questions
- Each question must relate to the email content
- Correct answer must be ONLY the letter: A, B, C, or D
- Each option must start with the letter, close paren, and space (e.g., "A) ")
- Difficulty can be: "easy", "medium", or "hard"
- Explanations must be substantive (2-3 sentences minimum)
- Questions should test understanding, not just recall
- Focus on practical non-profit management concepts
- Return ONLY the JSON object, nothing else`))

var explanationTemplate = template.Must(template.New("explain").Parse(`Provide a detailed explanation for this quiz question answer.

Question: {{.Question}}
Correct Answer: {{.Correct}}
User's Answer: {{.Selected}}
Result: {{if .IsCorrect}}✓ CORRECT{{else}}✗ INCORRECT{{end}}

Base Explanation: {{.Base}}

Write 2-3 paragraphs that:
1. {{if .IsCorrect}}Reinforces why this answer is correct and acknowledges the user's knowledge{{else}}Explains what the correct answer is and why the user's choice was incorrect{{end}}
2. Provides brief context about non-profit management best practices
3. {{if .IsCorrect}}Encourages continued learning{{else}}Offers constructive guidance for improvement{{end}}

Keep the tone professional, educational, and encouraging.`))

var summaryTemplate = template.Must(template.New("summary").Parse(`Generate a personalized, encouraging learning summary for a non-profit education quiz.

QUIZ RESULTS:
- Score: {{.Score}}% ({{.Correct}}/{{.Total}} correct)
- Questions answered correctly: {{.Correct}}
- Questions answered incorrectly: {{.Incorrect}}
{{if .Email}}
SOURCE EMAIL (excerpt):
{{.Email}}
{{end}}
Create a summary with these sections:

1. PERFORMANCE OVERVIEW (1 paragraph)
   - Acknowledge their score
   - {{if ge .Raw 80.0}}Celebrate their achievement{{else}}Encourage continued learning{{end}}

2. STRENGTHS (2-3 bullet points)
   - Specific areas they demonstrated understanding
   - {{if ge .Raw 90.0}}Highlight their excellent performance{{else}}Note what they got right{{end}}

3. GROWTH AREAS (2-3 bullet points)
   - {{if gt .Incorrect 0}}Topics needing more attention (they missed {{.Incorrect}} questions){{else}}Areas for deeper understanding{{end}}
   - Be constructive, not critical

4. RECOMMENDATIONS (3-4 bullet points)
   - Specific, actionable next steps
   - Resources or topics to study
   - How to apply this knowledge

5. ENCOURAGEMENT (1 paragraph)
   - Motivating closing statement
   - Reinforce the value of non-profit education
   - {{if ge .Raw 80.0}}Congratulate their achievement{{else}}Encourage them to keep learning{{end}}

Keep the tone professional, supportive, and action-oriented. Focus on growth mindset.`))

var fallbackSummaryTemplate = template.Must(template.New("fallback-summary").Parse(`QUIZ SUMMARY

You scored {{.Score}}% on this non-profit management assessment ({{.Correct}} out of {{.Total}} questions correct). {{.Performance}}

{{if ge .Raw 80.0}}You demonstrated strong understanding of non-profit concepts. {{end}}Review the explanations for each question to strengthen your understanding of donor relations, fundraising best practices, and ethical considerations in non-profit management.

Continue learning and applying these principles to become more effective in the non-profit sector.`))

type generationData struct {
	Count int
	Email string
}

type explanationData struct {
	Question  string
	Correct   string
	Selected  string
	IsCorrect bool
	Base      string
}

type summaryData struct {
	Score       string
	Raw         float64
	Correct     int
	Incorrect   int
	Total       int
	Email       string
	Performance string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncateRunes cuts s to at most n runes, appending "..." when cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// formatScore renders a percentage with at most two decimals and no
// trailing zeros: 100, 66.67, 12.5.
func formatScore(score float64) string {
	return strconv.FormatFloat(math.Round(score*100)/100, 'f', -1, 64)
}
