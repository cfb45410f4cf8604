package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainText(t *testing.T) {
	raw := "From: Jane Donor <jane@example.org>\nSubject: My gift\n\n\n\n\nHello team,\nHere is $250.\n"

	p := ParsePlainText(raw)
	assert.Equal(t, "My gift", p.Subject)
	assert.Equal(t, "Jane Donor <jane@example.org>", p.Sender)
	assert.Equal(t, "Hello team,\nHere is $250.", p.Content)
	assert.False(t, p.IsHTML)
}

func TestParsePlainText_NoHeaders(t *testing.T) {
	p := ParsePlainText("  Just a note.  ")
	assert.Empty(t, p.Subject)
	assert.Empty(t, p.Sender)
	assert.Equal(t, "Just a note.", p.Content)
}

func TestParseHTML(t *testing.T) {
	src := `<html><head><style>p { color: red; }</style><script>track()</script></head>
<body><p>Thank   you for
your <b>generous</b> gift!</p><div>See you at the gala.</div></body></html>`

	p := ParseHTML(src)
	assert.True(t, p.IsHTML)
	assert.Equal(t, "Thank you for your generous gift! See you at the gala.", p.Content)
	assert.NotContains(t, p.Content, "track")
	assert.NotContains(t, p.Content, "color")
}

func TestParse_DetectsHTML(t *testing.T) {
	assert.True(t, Parse("<p>hi</p>").IsHTML)
	assert.False(t, Parse("Subject: hi\nplain").IsHTML)
}

func TestParseMessage(t *testing.T) {
	raw := "From: Jane Donor <jane@example.org>\r\n" +
		"Subject: =?UTF-8?Q?Annual_gift_=E2=9C=93?=\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Please accept my donation.</p>\r\n"

	p, err := ParseMessage(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Annual gift ✓", p.Subject)
	assert.Equal(t, "jane@example.org", p.Sender)
	assert.Equal(t, "Please accept my donation.", p.Content)
	assert.True(t, p.IsHTML)
}

func TestParseMessage_Invalid(t *testing.T) {
	_, err := ParseMessage(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		content string
		want    Category
	}{
		{"Would you consider a donation this year?", CategoryDonationRequest},
		{"We are so grateful for you", CategoryThankYou},
		// Earlier categories win: "support" beats "thank you".
		{"Thank you for your support", CategoryDonationRequest},
		{"Join us at the spring gala", CategoryEventInvitation},
		{"Help needed at the food bank", CategoryVolunteerRequest},
		{"Our outcomes this quarter", CategoryImpactReport},
		{"The foundation approved our grant", CategoryGrantNotification},
		{"A quick news item", CategoryGeneralUpdate},
		{"Hello", CategoryGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.content), tt.content)
	}
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"general"}, Topics("hello there"))
	assert.Equal(t,
		[]string{"donor_relations", "event_planning", "fundraising"},
		Topics("Dear donor, your Donation funds our EVENT"))
}

func TestExtractKeyInfo(t *testing.T) {
	content := "Your gift of $1,250.00 on 03/14/2026 and $75 on March 3, 2026 was received. " +
		"Questions? Email giving@charity.org or call (555) 123-4567."

	info := ExtractKeyInfo(content)
	assert.Equal(t, []string{"$1,250.00", "$75"}, info.Amounts)
	assert.Equal(t, []string{"03/14/2026", "March 3, 2026"}, info.Dates)
	assert.Equal(t, []string{"giving@charity.org"}, info.Emails)
	assert.Equal(t, []string{"(555) 123-4567"}, info.Phones)
	assert.Equal(t, CategoryGeneral, info.Category)
	assert.Equal(t, len(strings.Fields(content)), info.WordCount)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("  a\n\tb   c "))

	long := strings.Repeat("x", 10005)
	out := Sanitize(long)
	assert.Equal(t, 10003, len(out))
	assert.True(t, strings.HasSuffix(out, "..."))
}
