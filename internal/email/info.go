package email

import (
	"regexp"
	"sort"
	"strings"
)

// Category is a coarse label for what an email is about.
type Category string

const (
	CategoryDonationRequest   Category = "donation_request"
	CategoryThankYou          Category = "thank_you"
	CategoryEventInvitation   Category = "event_invitation"
	CategoryVolunteerRequest  Category = "volunteer_request"
	CategoryImpactReport      Category = "impact_report"
	CategoryGrantNotification Category = "grant_notification"
	CategoryGeneralUpdate     Category = "general_update"
	CategoryGeneral           Category = "general"
)

// categoryKeywords is checked in order; the first category with a matching
// keyword wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryDonationRequest, []string{"donate", "donation", "contribute", "support", "give"}},
	{CategoryThankYou, []string{"thank you", "grateful", "appreciation", "thanks"}},
	{CategoryEventInvitation, []string{"event", "invitation", "join us", "please attend"}},
	{CategoryVolunteerRequest, []string{"volunteer", "help needed", "join our team"}},
	{CategoryImpactReport, []string{"impact", "results", "outcomes", "achievements"}},
	{CategoryGrantNotification, []string{"grant", "funding", "award"}},
	{CategoryGeneralUpdate, []string{"update", "news", "announcement"}},
}

// Categorize labels content by keyword.
func Categorize(content string) Category {
	lower := strings.ToLower(content)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

var topicKeywords = map[string]string{
	"donation":  "fundraising",
	"donor":     "donor_relations",
	"volunteer": "volunteer_management",
	"impact":    "impact_measurement",
	"grant":     "grant_writing",
	"budget":    "financial_management",
	"program":   "program_development",
	"community": "community_engagement",
	"marketing": "marketing_outreach",
	"event":     "event_planning",
}

// Topics returns the sorted learning topics mentioned in text, or
// ["general"] when none match.
func Topics(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	for kw, topic := range topicKeywords {
		if strings.Contains(lower, kw) {
			seen[topic] = true
		}
	}
	if len(seen) == 0 {
		return []string{"general"}
	}
	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// KeyInfo is metadata pulled from email text.
type KeyInfo struct {
	Amounts   []string `json:"amounts"`
	Dates     []string `json:"dates"`
	Emails    []string `json:"emails"`
	Phones    []string `json:"phones"`
	Category  Category `json:"category"`
	WordCount int      `json:"word_count"`
}

var (
	amountPattern = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	datePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}`),
	}
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// ExtractKeyInfo finds amounts, dates, addresses and phone numbers.
func ExtractKeyInfo(content string) KeyInfo {
	info := KeyInfo{
		Amounts:   orEmpty(amountPattern.FindAllString(content, -1)),
		Emails:    orEmpty(emailPattern.FindAllString(content, -1)),
		Phones:    orEmpty(phonePattern.FindAllString(content, -1)),
		Category:  Categorize(content),
		WordCount: len(strings.Fields(content)),
		Dates:     []string{},
	}
	for _, p := range datePatterns {
		info.Dates = append(info.Dates, p.FindAllString(content, -1)...)
	}
	return info
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
