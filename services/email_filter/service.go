package email_filter

import (
	"strings"

	"github.com/oneboxhq/onebox/internal/enum"
)

// Subject keyword rules, checked in order. First match wins.
var (
	spamKeywords        = []string{"spam", "offer", "lottery"}
	outOfOfficeKeywords = []string{"out of office", "vacation", "leave"}
)

// Categorize maps a message subject to a category using case-insensitive
// substring rules. The body is never inspected. Pure and deterministic;
// an empty subject falls through to Inbox.
func Categorize(subject string) enum.EmailCategory {
	lowerSubject := strings.ToLower(subject)

	for _, keyword := range spamKeywords {
		if strings.Contains(lowerSubject, keyword) {
			return enum.CategorySpam
		}
	}

	for _, keyword := range outOfOfficeKeywords {
		if strings.Contains(lowerSubject, keyword) {
			return enum.CategoryOutOfOffice
		}
	}

	return enum.CategoryInbox
}
