package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/makaohq/makao/internal/channel"
)

var (
	dateRe  = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-]{7,}\d`)
)

// ParseDate extracts a day/month/year date from free text and normalizes it
// to DD/MM/YYYY. Two-digit years are taken as 20xx. Returns false when no
// calendar-valid date is present.
func ParseDate(s string) (string, bool) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	switch {
	case len(m[3]) == 2:
		year += 2000
	case len(m[3]) == 3:
		return "", false
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	// time.Date normalizes overflow (e.g. 31/02 becomes March), so a
	// round-trip check catches impossible dates.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year), true
}

// ParseNamePhone splits a "Jane Mwangi 0712345678" style message into a
// contact name and a normalized phone number. Returns false when either part
// is missing.
func ParseNamePhone(s string) (name, phone string, ok bool) {
	loc := phoneRe.FindStringIndex(s)
	if loc == nil {
		return "", "", false
	}
	raw := s[loc[0]:loc[1]]
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(digits) < 9 {
		return "", "", false
	}
	name = strings.TrimFunc(s[:loc[0]]+s[loc[1]:], func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == ':' || r == '.'
	})
	if name == "" {
		return "", "", false
	}
	return name, channel.NormalizeAddress(digits), true
}
