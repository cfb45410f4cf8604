// Package email cleans up donor emails and derives lightweight metadata
// (category, topics, amounts, dates) from their text.
package email

import (
	"fmt"
	"io"
	"mime"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Parsed is a cleaned email.
type Parsed struct {
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	IsHTML  bool   `json:"is_html"`
}

var (
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	subjectLine    = regexp.MustCompile(`(?mi)^Subject:\s*(.+?)\s*$`)
	fromLine       = regexp.MustCompile(`(?mi)^From:\s*(.+?)\s*$`)
	subjectHeader  = regexp.MustCompile(`(?mi)^Subject:.*$`)
	fromHeader     = regexp.MustCompile(`(?mi)^From:.*$`)
	htmlIndicators = []string{"<html", "<body", "<div", "<p>", "<br", "<table"}
)

// Parse detects HTML input and dispatches to ParseHTML or ParsePlainText.
func Parse(text string) Parsed {
	lower := strings.ToLower(text)
	for _, marker := range htmlIndicators {
		if strings.Contains(lower, marker) {
			return ParseHTML(text)
		}
	}
	return ParsePlainText(text)
}

// ParsePlainText pulls Subject and From lines out of pasted email text and
// returns the remainder as content.
func ParsePlainText(text string) Parsed {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	var p Parsed
	content := text
	if m := subjectLine.FindStringSubmatch(text); m != nil {
		p.Subject = m[1]
		content = subjectHeader.ReplaceAllString(content, "")
	}
	if m := fromLine.FindStringSubmatch(text); m != nil {
		p.Sender = m[1]
		content = fromHeader.ReplaceAllString(content, "")
	}
	p.Content = strings.TrimSpace(content)
	return p
}

// ParseHTML extracts visible text from an HTML email, dropping script and
// style content and collapsing whitespace.
func ParseHTML(src string) Parsed {
	z := html.NewTokenizer(strings.NewReader(src))
	var chunks []string
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return Parsed{Content: strings.Join(chunks, " "), IsHTML: true}
		case html.StartTagToken:
			if name, _ := z.TagName(); isInvisible(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isInvisible(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			chunks = append(chunks, strings.Fields(string(z.Text()))...)
		}
	}
}

func isInvisible(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}

// ParseMessage reads an RFC 5322 message (an .eml file). HTML bodies are
// reduced to text.
func ParseMessage(r io.Reader) (Parsed, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("read message: %w", err)
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return Parsed{}, fmt.Errorf("read body: %w", err)
	}

	var p Parsed
	if strings.HasPrefix(strings.ToLower(msg.Header.Get("Content-Type")), "text/html") {
		p = ParseHTML(string(body))
	} else {
		p = Parsed{Content: strings.TrimSpace(string(body))}
	}

	dec := new(mime.WordDecoder)
	if subject, err := dec.DecodeHeader(msg.Header.Get("Subject")); err == nil {
		p.Subject = subject
	}
	if from, err := msg.Header.AddressList("From"); err == nil && len(from) > 0 {
		p.Sender = from[0].Address
	} else {
		p.Sender = msg.Header.Get("From")
	}
	return p, nil
}

// Sanitize collapses whitespace and caps content at 10000 runes.
func Sanitize(content string) string {
	const maxRunes = 10000
	content = strings.Join(strings.Fields(content), " ")
	if r := []rune(content); len(r) > maxRunes {
		return string(r[:maxRunes]) + "..."
	}
	return content
}
