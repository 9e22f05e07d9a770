package quiz

import (
	"fmt"
	"math"

	"github.com/abhisek/learnhub/internal/api"
)

// Accuracy returns correct/total, or 0 for an empty submission.
func Accuracy(r api.SubmissionResult) float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// StarLine renders the correct count as "4⭐".
func StarLine(r api.SubmissionResult) string {
	return fmt.Sprintf("%d⭐", r.Correct)
}

// PercentLine renders accuracy rounded to a whole percent, e.g. "80%".
func PercentLine(r api.SubmissionResult) string {
	return fmt.Sprintf("%d%%", int(math.Round(Accuracy(r)*100)))
}

// ScoreLine renders "Score: 4/5".
func ScoreLine(r api.SubmissionResult) string {
	return fmt.Sprintf("Score: %d/%d", r.Correct, r.Total)
}

// BestLine renders "Best: 4/5".
func BestLine(r api.SubmissionResult) string {
	return fmt.Sprintf("Best: %d/%d", r.BestScore, r.Total)
}

// Verdict is the one-line encouragement under the score.
func Verdict(r api.SubmissionResult) string {
	if r.Improved {
		return "New personal best!"
	}
	return "Try again to beat your best score."
}
