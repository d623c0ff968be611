package post

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultDateLayout renders dates like "Jan 5, 2025".
const DefaultDateLayout = "Jan 2, 2006"

// maxEpochMillis bounds the representable range of epoch values.
const maxEpochMillis = 8.64e15

// dateParser is one step of the publish date fallback chain.
type dateParser func(v any, loc *time.Location) (time.Time, bool)

var (
	dateTimeRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?: (\d{1,2}):(\d{1,2})(?::(\d{1,2}))?)?$`)
	embeddedDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	genericLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05 -0700 MST",
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC822Z,
		time.RFC822,
		time.RFC850,
		time.ANSIC,
		time.UnixDate,
		time.RubyDate,
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"2006/01/02",
		"01/02/2006",
	}
)

// Formatter turns heterogeneous timestamp values into display labels.
type Formatter struct {
	layout  string
	loc     *time.Location
	parsers []dateParser
}

// NewFormatter builds a formatter. Empty layout and nil location select
// DefaultDateLayout and time.Local.
func NewFormatter(layout string, loc *time.Location) *Formatter {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{
		layout: layout,
		loc:    loc,
		parsers: []dateParser{
			parseTimeValue,
			parseDateTime,
			parseEpoch,
			parseGeneric,
			parseEmbeddedDate,
		},
	}
}

var defaultFormatter = NewFormatter("", nil)

// Parse runs the parser chain and returns the first valid time.
func (f *Formatter) Parse(v any) (time.Time, bool) {
	v = unwrapDate(v)
	if isEmptyDate(v) {
		return time.Time{}, false
	}
	for _, p := range f.parsers {
		if t, ok := p(v, f.loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format returns the display label for v: NoDate when v is empty, the
// formatted date when any parser succeeds, or v itself as a string.
func (f *Formatter) Format(v any) string {
	v = unwrapDate(v)
	if isEmptyDate(v) {
		return NoDate
	}
	if t, ok := f.Parse(v); ok {
		return t.In(f.loc).Format(f.layout)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// unwrapDate reduces v to either a time.Time or a string.
func unwrapDate(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return ""
		}
		return *x
	case string:
		return x
	case gjson.Result:
		switch x.Type {
		case gjson.Null:
			return ""
		case gjson.String:
			return x.Str
		default:
			return strings.TrimSpace(x.Raw)
		}
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func isEmptyDate(v any) bool {
	switch x := v.(type) {
	case time.Time:
		return x.IsZero()
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func parseTimeValue(v any, _ *time.Location) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}

// parseDateTime handles "YYYY-MM-DD[ HH:MM[:SS]]" without any layout
// guessing, in the formatter's location.
func parseDateTime(v any, loc *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	m := dateTimeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	parts := make([]int, 6)
	for i, raw := range m[1:] {
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}
	y, mo, d, hh, mm, ss := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	t := time.Date(y, time.Month(mo), d, hh, mm, ss, 0, loc)
	// time.Date normalizes overflow, a round trip mismatch means bad input.
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d || t.Hour() != hh || t.Minute() != mm || t.Second() != ss {
		return time.Time{}, false
	}
	return t, true
}

// parseEpoch reads a numeric string as epoch seconds when its integer part
// has exactly ten digits and as epoch milliseconds otherwise.
func parseEpoch(v any, _ *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	ms := f
	if len(strconv.FormatFloat(math.Trunc(math.Abs(f)), 'f', 0, 64)) == 10 {
		ms = f * 1000
	}
	if math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	sec := math.Floor(ms / 1000)
	nsec := (ms - sec*1000) * float64(time.Millisecond)
	return time.Unix(int64(sec), int64(nsec)), true
}

func parseGeneric(v any, loc *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseEmbeddedDate(v any, loc *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	m := embeddedDateRe.FindString(s)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", m, loc)
	return t, err == nil
}
