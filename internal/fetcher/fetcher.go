// Package fetcher parses portfolio roster files (CSV and XLSX) into
// companies and their last recorded interactions.
package fetcher

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Entry is one roster row: a company plus its relationship context.
type Entry struct {
	Company         model.Company
	ContactEmail    string
	FollowUpTrigger string
	LastSummary     string
	LastContacted   time.Time
}

// dateLayouts lists the formats accepted in last_contacted columns.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

// ParseRoster maps header-addressed rows to entries. Column matching is
// case-insensitive; unknown columns are ignored. A row without a name is
// skipped.
func ParseRoster(header []string, rows [][]string) ([]Entry, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil, eris.New("fetcher: roster has no name column")
	}

	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []Entry
	for _, row := range rows {
		name := field(row, "name")
		if name == "" {
			continue
		}

		company := model.NewCompany(name)
		company.Domain = field(row, "domain")
		company.Sector = field(row, "sector")
		company.Stage = field(row, "stage")
		if tags := field(row, "tags"); tags != "" {
			for _, tag := range strings.Split(tags, ";") {
				if t := strings.TrimSpace(tag); t != "" {
					company.Tags = append(company.Tags, t)
				}
			}
		}

		entry := Entry{
			Company:         company,
			ContactEmail:    field(row, "email"),
			FollowUpTrigger: field(row, "trigger"),
			LastSummary:     field(row, "notes"),
		}
		if raw := field(row, "last_contacted"); raw != "" {
			ts, err := parseDate(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "fetcher: row for %q", name)
			}
			entry.LastContacted = ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("fetcher: unparseable date %q", raw)
}
