package meltr

import (
	"github.com/cran/meltr/collector"
	"github.com/cran/meltr/source"
	"github.com/cran/meltr/tokenizer"
)

// Option configures a melt call.
type Option func(*options)

type options struct {
	locale   *Locale
	na       []string
	quote    rune
	comment  string
	skip     int
	rowLimit int
	trimWS   bool
	progress bool
}

func defaultOptions() options {
	return options{
		locale:   DefaultLocale(),
		na:       tokenizer.DefaultNA(),
		quote:    '"',
		rowLimit: -1,
	}
}

// WithLocale sets the locale used for decoding and type guessing.
func WithLocale(l *Locale) Option {
	return func(o *options) { o.locale = l }
}

// WithNA sets the strings recognized as missing value markers.
func WithNA(na ...string) Option {
	return func(o *options) { o.na = na }
}

// WithQuote sets the quoting character for delimited input; 0 disables
// quoting.
func WithQuote(q rune) Option {
	return func(o *options) { o.quote = q }
}

// WithComment sets a prefix that comments out the rest of a line.
func WithComment(c string) Option {
	return func(o *options) { o.comment = c }
}

// WithSkip drops n leading lines before tokenizing.
func WithSkip(n int) Option {
	return func(o *options) { o.skip = n }
}

// WithRowLimit caps the melt at n input rows; negative means unbounded.
func WithRowLimit(n int) Option {
	return func(o *options) { o.rowLimit = n }
}

// WithTrimWS trims surrounding blanks from unquoted delimited fields.
func WithTrimWS() Option {
	return func(o *options) { o.trimWS = true }
}

// WithProgress enables the console progress indicator.
func WithProgress() Option {
	return func(o *options) { o.progress = true }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DefaultCollectors returns the four output collectors of a melt, in the
// fixed row, col, data_type, value order NewMeltEngine expects.
func DefaultCollectors() [numColumns]collector.Collector {
	return [numColumns]collector.Collector{
		collector.NewInteger(),
		collector.NewInteger(),
		collector.NewCharacter(),
		collector.NewCharacter(),
	}
}

// EmptyFrame is the 0-row, 4-column result for empty sources; it is built
// without ever entering the tokenizer loop.
func EmptyFrame() *DataFrame {
	df := &DataFrame{}
	df.Columns = []Column{
		{Name: defaultColNames[colRow], Ints: []int{}},
		{Name: defaultColNames[colCol], Ints: []int{}},
		{Name: defaultColNames[colType], Strs: []string{}},
		{Name: defaultColNames[colValue], Strs: []string{}},
	}
	return df
}

func meltAll(src source.Source, tok tokenizer.Tokenizer, o options) (*DataFrame, error) {
	if len(src.Data()) == 0 {
		return EmptyFrame(), nil
	}

	engine := NewMeltEngine(src, tok, DefaultCollectors(), o.progress, nil)

	return engine.MeltToDataFrame(o.locale, o.rowLimit)
}

// MeltDelim melts input split on the given delimiter.
func MeltDelim(src source.Source, delim rune, opts ...Option) (*DataFrame, error) {
	o := buildOptions(opts)

	tok := tokenizer.NewDelimTokenizer(delim, tokenizer.DelimOptions{
		Quote:        o.quote,
		EscapeDouble: true,
		Comment:      o.comment,
		Skip:         o.skip,
		TrimWS:       o.trimWS,
		NA:           o.na,
	})

	return meltAll(src, tok, o)
}

// MeltCSV melts comma separated input.
func MeltCSV(src source.Source, opts ...Option) (*DataFrame, error) {
	return MeltDelim(src, ',', opts...)
}

// MeltTSV melts tab separated input.
func MeltTSV(src source.Source, opts ...Option) (*DataFrame, error) {
	return MeltDelim(src, '\t', opts...)
}

// MeltTable melts whitespace separated input: any run of blanks separates
// tokens.
func MeltTable(src source.Source, opts ...Option) (*DataFrame, error) {
	o := buildOptions(opts)

	tok := tokenizer.NewWSTokenizer(tokenizer.WSOptions{
		Comment: o.comment,
		Skip:    o.skip,
		NA:      o.na,
	})

	return meltAll(src, tok, o)
}

// MeltFWF melts fixed width input using the given field positions. Pass
// tokenizer.GuessFWFPositions(src.Data()) to infer positions from blank
// character columns.
func MeltFWF(src source.Source, positions tokenizer.FWFPositions, opts ...Option) (*DataFrame, error) {
	o := buildOptions(opts)

	tok, err := tokenizer.NewFWFTokenizer(positions, tokenizer.FWFOptions{
		Comment: o.comment,
		Skip:    o.skip,
		NA:      o.na,
	})
	if err != nil {
		return nil, err
	}

	return meltAll(src, tok, o)
}
