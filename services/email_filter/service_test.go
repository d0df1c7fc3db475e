package email_filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneboxhq/onebox/internal/enum"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected enum.EmailCategory
	}{
		{"spam keyword", "Limited time spam alert", enum.CategorySpam},
		{"offer keyword", "Exclusive offer just for you", enum.CategorySpam},
		{"offer keyword uppercase", "EXCLUSIVE OFFER JUST FOR YOU", enum.CategorySpam},
		{"offer keyword mixed case", "Special OfFeR inside", enum.CategorySpam},
		{"lottery keyword", "You won the lottery!", enum.CategorySpam},
		{"out of office phrase", "Out of Office: back Monday", enum.CategoryOutOfOffice},
		{"vacation keyword", "Re: Going on Vacation", enum.CategoryOutOfOffice},
		{"leave keyword", "Annual leave notice", enum.CategoryOutOfOffice},
		{"plain subject", "Project Update", enum.CategoryInbox},
		{"empty subject", "", enum.CategoryInbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.subject))
		})
	}
}

func TestCategorizeSpamRulesWinOverOutOfOffice(t *testing.T) {
	// Rule order is significant: spam keywords are checked first.
	assert.Equal(t, enum.CategorySpam, Categorize("Vacation offer: 50% off"))
}

func TestCategorizeIsIdempotent(t *testing.T) {
	subject := "Re: Going on Vacation"
	first := Categorize(subject)
	second := Categorize(subject)
	assert.Equal(t, first, second)
	assert.Equal(t, enum.CategoryOutOfOffice, first)
}
