package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// progressBar renders done/total as a filled bar of the given width.
func progressBar(done, total, width int) string {
	label := fmt.Sprintf("%d/%d", done, total)
	barWidth := max(width-lipgloss.Width(label)-2, 4)

	filled := 0
	if total > 0 {
		filled = min(barWidth*done/total, barWidth)
	}

	bar := lipgloss.NewStyle().Background(colorSecondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(colorBorder).Render(strings.Repeat(" ", barWidth-filled))
	return bar + "  " + hintStyle.Render(label)
}
