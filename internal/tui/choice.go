package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

var answerLetters = []string{"A", "B", "C", "D"}

// choice is a single-answer selector over lettered options.
type choice struct {
	question  string
	options   []string
	selected  int
	submitted bool
}

func newChoice(question string, options []string) choice {
	return choice{question: question, options: options}
}

// update handles arrow/j/k navigation, a-d jumps and enter to submit.
func (c choice) update(msg tea.Msg) choice {
	if c.submitted {
		return c
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.selected > 0 {
			c.selected--
		}
	case "down", "j":
		if c.selected < len(c.options)-1 {
			c.selected++
		}
	case "enter":
		c.submitted = true
	default:
		for i, l := range answerLetters[:min(len(answerLetters), len(c.options))] {
			if strings.EqualFold(key, l) {
				c.selected = i
			}
		}
	}
	return c
}

// answer is the selected letter.
func (c choice) answer() string {
	return answerLetters[c.selected]
}

func (c choice) view() string {
	var b strings.Builder
	b.WriteString(bodyStyle.Bold(true).Render(c.question))
	b.WriteString("\n\n")
	for i, opt := range c.options {
		prefix := "  "
		style := bodyStyle
		if i == c.selected {
			prefix = "> "
			style = selectedStyle
		}
		b.WriteString(style.Render(prefix + opt))
		b.WriteByte('\n')
	}
	return b.String()
}
