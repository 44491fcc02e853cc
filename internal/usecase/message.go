package usecase

import (
	"strings"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
)

const (
	messageNoneFound = "[404 check] No new dead links detected."
	messageHeader    = "[404 check]\nThe following links were newly detected as 404:\n"
)

// FormatMessage renders the notification text listing links.
func FormatMessage(links []domain.DeadLink) string {
	if len(links) == 0 {
		return messageNoneFound
	}

	lines := make([]string, 0, len(links))
	for _, d := range links {
		lines = append(lines, "- "+d.URL+" (from: "+d.Parent+")")
	}
	return messageHeader + strings.Join(lines, "\n")
}
