package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// now is the clock used for generated dates; tests replace it.
var now = time.Now

var supportedLocales = []language.Tag{language.Spanish, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

var monthNames = map[language.Tag][12]string{
	language.Spanish: {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	language.English: {"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December"},
}

// MatchLocale maps a BCP 47 string ("es", "es-AR", "en_GB") onto a
// supported locale. Unknown input falls back to Spanish.
func MatchLocale(s string) language.Tag {
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Spanish
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return language.Spanish
	}
	return supportedLocales[idx]
}

// FormatLongDate renders t as "17 de octubre de 2026" (es) or
// "17 October 2026" (en). Days are zero padded.
func FormatLongDate(t time.Time, locale language.Tag) string {
	locale = MatchLocale(locale.String())
	month := monthNames[locale][t.Month()-1]
	if locale == language.English {
		return fmt.Sprintf("%02d %s %d", t.Day(), month, t.Year())
	}
	return fmt.Sprintf("%02d de %s de %d", t.Day(), month, t.Year())
}

// ParseLongDate parses the output of FormatLongDate.
func ParseLongDate(locale language.Tag, s string) (time.Time, error) {
	locale = MatchLocale(locale.String())
	fields := strings.Fields(s)
	if locale == language.Spanish {
		if len(fields) != 5 || fields[1] != "de" || fields[3] != "de" {
			return time.Time{}, fmt.Errorf("service: %q is not a long spanish date", s)
		}
		fields = []string{fields[0], fields[2], fields[4]}
	}
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("service: %q is not a long date", s)
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("service: day in %q: %w", s, err)
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("service: year in %q: %w", s, err)
	}
	month := 0
	for i, name := range monthNames[locale] {
		if strings.EqualFold(name, fields[1]) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, fmt.Errorf("service: unknown month %q", fields[1])
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("service: %q is not a valid date", s)
	}
	return t, nil
}
