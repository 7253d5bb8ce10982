package normalize

import (
	"net/url"
	"strings"

	"marketsense/internal/llm"
	"marketsense/internal/models"
)

// DedupCitations converts a provider's raw source list into a bounded,
// display-ready citation list: unique by URL in first-seen order, truncated
// to max entries. Sources with neither URL nor title are dropped. The
// display source is the URL hostname with a leading "www." stripped; an
// unparsable URL leaves it empty rather than dropping the entry.
func DedupCitations(sources []llm.Source, max int) []models.Citation {
	if max <= 0 {
		return []models.Citation{}
	}
	out := make([]models.Citation, 0, max)
	seen := make(map[string]struct{}, len(sources))

	for _, s := range sources {
		if s.URI == "" && s.Title == "" {
			continue
		}
		if s.URI != "" {
			if _, dup := seen[s.URI]; dup {
				continue
			}
			seen[s.URI] = struct{}{}
		}

		out = append(out, models.Citation{
			Title:  s.Title,
			URL:    s.URI,
			Source: displayHost(s.URI),
		})
		if len(out) >= max {
			break
		}
	}
	return out
}

// displayHost derives the display hostname from a citation URL.
func displayHost(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
