package components

import "github.com/abhisek/learnhub/internal/ui/theme"

// RetryHint is shown under an error that R retries.
const RetryHint = "Press R to retry."

// ErrorLine renders msg wrapped to width. With retry, the hint goes on its
// own line so wrapping never splits it.
func ErrorLine(msg string, retry bool, width int) string {
	out := theme.ErrorText.Width(width).Render(msg)
	if retry {
		out += "\n" + theme.Hint.Render(RetryHint)
	}
	return out
}
