package quiz

// Grade maps a percentage score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// PerformanceLabel maps a percentage score to a short description.
func PerformanceLabel(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// performanceLine is the one-line verdict used in the fallback summary.
func performanceLine(score float64) string {
	switch {
	case score >= 80:
		return "Excellent work!"
	case score >= 60:
		return "Good effort!"
	default:
		return "Keep practicing!"
	}
}
