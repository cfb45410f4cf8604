package quiz

// fallbackBank is served whenever model output cannot be turned into at
// least one valid question.
var fallbackBank = []Question{
	{
		ID:           "q1",
		QuestionText: "What is the primary purpose of acknowledging donations in non-profit organizations?",
		Options: []string{
			"A) To provide tax documentation",
			"B) To request more donations",
			"C) To advertise programs",
			"D) To recruit volunteers",
		},
		CorrectAnswer: "A",
		Explanation:   "Acknowledgment letters provide donors with necessary tax documentation for their charitable contributions.",
		Difficulty:    DifficultyMedium,
	},
	{
		ID:           "q2",
		QuestionText: "What does 501(c)(3) status signify for a non-profit organization?",
		Options: []string{
			"A) Tax-exempt status allowing tax-deductible donations",
			"B) Permission to conduct political campaigns",
			"C) Authorization to sell products",
			"D) Requirement to pay corporate taxes",
		},
		CorrectAnswer: "A",
		Explanation:   "501(c)(3) status means the organization is tax-exempt and donations to it are tax-deductible.",
		Difficulty:    DifficultyEasy,
	},
	{
		ID:           "q3",
		QuestionText: "Why is donor stewardship important in non-profit management?",
		Options: []string{
			"A) It builds long-term relationships and encourages future giving",
			"B) It is legally required by the IRS",
			"C) It replaces the need for fundraising",
			"D) It eliminates the need for program evaluation",
		},
		CorrectAnswer: "A",
		Explanation:   "Donor stewardship helps maintain relationships with supporters and encourages continued support.",
		Difficulty:    DifficultyMedium,
	},
	{
		ID:           "q4",
		QuestionText: "What information should a donation receipt include?",
		Options: []string{
			"A) Donation amount, date, and organization's tax ID",
			"B) Only the donor's name",
			"C) Staff salaries",
			"D) Future fundraising goals",
		},
		CorrectAnswer: "A",
		Explanation:   "Proper receipts must include the amount, date, and tax identification for IRS purposes.",
		Difficulty:    DifficultyEasy,
	},
	{
		ID:           "q5",
		QuestionText: "How soon should a non-profit acknowledge a donation?",
		Options: []string{
			"A) Within 48-72 hours for best practice",
			"B) Within 6 months",
			"C) Only at year-end",
			"D) Acknowledgment is optional",
		},
		CorrectAnswer: "A",
		Explanation:   "Timely acknowledgment (within 2-3 days) shows respect and professionalism.",
		Difficulty:    DifficultyMedium,
	},
}

// FallbackQuestions returns the first n questions of the static bank. The
// bank holds five questions, so larger n yields five. Callers get their own
// copies.
func FallbackQuestions(n int) []Question {
	if n > len(fallbackBank) {
		n = len(fallbackBank)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Question, n)
	for i := range n {
		q := fallbackBank[i]
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
