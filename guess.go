package meltr

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type labels produced by GuessType. The melt engine adds "missing" and
// "empty" for the corresponding token kinds; GuessType itself only sees
// concrete string tokens.
const (
	TypeLogical   = "logical"
	TypeInteger   = "integer"
	TypeDouble    = "double"
	TypeNumber    = "number"
	TypeDate      = "date"
	TypeTime      = "time"
	TypeDatetime  = "datetime"
	TypeCharacter = "character"
	TypeMissing   = "missing"
	TypeEmpty     = "empty"
)

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// GuessType classifies raw text into one of the fixed type labels under
// the given locale. Checks run from most to least specific; anything that
// matches nothing is a character.
func GuessType(text string, l *Locale) string {
	switch {
	case isLogical(text, l):
		return TypeLogical
	case isInteger(text):
		return TypeInteger
	case isDouble(text, l):
		return TypeDouble
	case isNumber(text, l):
		return TypeNumber
	case parsesAs(text, l.TimeFormat):
		return TypeTime
	case parsesAs(text, l.DateFormat):
		return TypeDate
	case isDatetime(text):
		return TypeDatetime
	default:
		return TypeCharacter
	}
}

func isLogical(text string, l *Locale) bool {
	for _, v := range l.TrueValues {
		if text == v {
			return true
		}
	}
	for _, v := range l.FalseValues {
		if text == v {
			return true
		}
	}
	return false
}

func isInteger(text string) bool {
	if text == "" {
		return false
	}
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}

func isDouble(text string, l *Locale) bool {
	if text == "" {
		return false
	}
	if l.DecimalMark != '.' {
		if strings.ContainsRune(text, '.') {
			return false
		}
		text = strings.ReplaceAll(text, string(l.DecimalMark), ".")
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

// isNumber recognizes "human" numbers that carry grouping marks, like
// 1,234,567.89. The stripped form must survive a strict decimal parse.
func isNumber(text string, l *Locale) bool {
	if !strings.ContainsRune(text, l.GroupingMark) {
		return false
	}

	stripped := strings.ReplaceAll(text, string(l.GroupingMark), "")
	if l.DecimalMark != '.' {
		stripped = strings.ReplaceAll(stripped, string(l.DecimalMark), ".")
	}

	_, err := decimal.NewFromString(stripped)
	return err == nil
}

func parsesAs(text, layout string) bool {
	if layout == "" || len(text) != len(layout) {
		return false
	}
	_, err := time.Parse(layout, text)
	return err == nil
}

func isDatetime(text string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return true
		}
	}
	return false
}
