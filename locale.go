// Package meltr melts irregular tabular text (delimited, whitespace
// separated, or fixed width) into a long-format table with one record per
// input token: its 1-based row/column position, an inferred type label,
// and the raw text value. Ragged and misaligned input is consumed as-is;
// nothing is forced into a rectangle.
package meltr

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Locale controls how raw text is interpreted: decimal and grouping
// marks, date/time layouts (Go reference layouts), boolean markers, the
// time zone name, and the input encoding. The melt engine passes it
// through to the type guesser unexamined.
type Locale struct {
	DecimalMark  rune
	GroupingMark rune
	DateFormat   string
	TimeFormat   string
	TrueValues   []string
	FalseValues  []string
	TZ           string
	Encoding     string
}

// DefaultLocale returns the locale meltr assumes when none is given:
// US-centric marks, ISO date/time layouts, UTF-8.
func DefaultLocale() *Locale {
	return &Locale{
		DecimalMark:  '.',
		GroupingMark: ',',
		DateFormat:   "2006-01-02",
		TimeFormat:   "15:04:05",
		TrueValues:   []string{"T", "TRUE", "True", "true"},
		FalseValues:  []string{"F", "FALSE", "False", "false"},
		TZ:           "UTC",
		Encoding:     "UTF-8",
	}
}

// Validate checks the locale is internally consistent.
func (l *Locale) Validate() error {
	if l.DecimalMark == l.GroupingMark {
		return fmt.Errorf("%w: both are %q", ErrLocaleMarks, l.DecimalMark)
	}
	if _, err := l.NewDecoder(); err != nil {
		return err
	}
	return nil
}

// NewDecoder resolves the locale's encoding name to a transformer that
// decodes input bytes to UTF-8. UTF-8 input needs no decoding, so the
// returned transformer is nil for it.
func (l *Locale) NewDecoder() (transform.Transformer, error) {
	name := strings.ToLower(strings.ReplaceAll(l.Encoding, "_", "-"))

	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "iso-8859-2":
		return charmap.ISO8859_2.NewDecoder(), nil
	case "iso-8859-15":
		return charmap.ISO8859_15.NewDecoder(), nil
	case "windows-1250":
		return charmap.Windows1250.NewDecoder(), nil
	case "windows-1251":
		return charmap.Windows1251.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "shift-jis", "shiftjis", "sjis":
		return japanese.ShiftJIS.NewDecoder(), nil
	case "euc-jp":
		return japanese.EUCJP.NewDecoder(), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, l.Encoding)
	}
}
