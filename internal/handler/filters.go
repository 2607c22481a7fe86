package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/stats"
)

// parseFilter reads year, from, to, tags and players from the query string.
// Dates are YYYY-MM-DD and both bounds are inclusive.
func parseFilter(r *http.Request) (stats.Filter, error) {
	q := r.URL.Query()
	var f stats.Filter

	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil || year < 1900 || year > 9999 {
			return stats.Filter{}, fmt.Errorf("%w: year must be a four digit year", domain.ErrInvalidRequest)
		}
		f.Year = year
	}
	if s := q.Get("from"); s != "" {
		from, err := domain.ParseDate(s)
		if err != nil {
			return stats.Filter{}, fmt.Errorf("%w: from must be formatted YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		f.StartDate = &from
	}
	if s := q.Get("to"); s != "" {
		to, err := domain.ParseDate(s)
		if err != nil {
			return stats.Filter{}, fmt.Errorf("%w: to must be formatted YYYY-MM-DD", domain.ErrInvalidRequest)
		}
		f.EndDate = &to
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return stats.Filter{}, fmt.Errorf("%w: to is before from", domain.ErrInvalidRequest)
	}

	f.GameTags = splitList(q.Get("tags"))
	f.PlayerIDs = splitList(q.Get("players"))
	return f, nil
}

// splitList splits a comma separated parameter, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
