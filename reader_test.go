package meltr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/cran/meltr/source"
	"github.com/cran/meltr/tokenizer"
)

type cell struct {
	row, col int
	dataType string
	value    string
}

func newCSVEngine(t *testing.T, input string) *MeltEngine {
	t.Helper()

	src, err := source.NewStringSource(input)
	assert.NoError(t, err)

	return NewMeltEngine(src, tokenizer.NewDelimTokenizer(','), DefaultCollectors(), false, nil)
}

func frameCells(t *testing.T, df *DataFrame) []cell {
	t.Helper()

	assert.Equal(t, 4, len(df.Columns))

	cells := make([]cell, df.NRow())
	for i := range cells {
		cells[i] = cell{
			row:      df.Columns[0].Ints[i],
			col:      df.Columns[1].Ints[i],
			dataType: df.Columns[2].Strs[i],
			value:    df.Columns[3].Strs[i],
		}
	}

	return cells
}

func TestMeltWhitespaceExample(t *testing.T) {
	src, err := source.NewStringSource("a b\nc d\n")
	assert.NoError(t, err)

	df, err := MeltTable(src)
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "character", "b"},
		{2, 1, "character", "c"},
		{2, 2, "character", "d"},
	}, frameCells(t, df))
}

func TestMeltIntegerExample(t *testing.T) {
	src, err := source.NewStringSource("1 2\n3 4\n")
	assert.NoError(t, err)

	df, err := MeltTable(src)
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "integer", "1"},
		{1, 2, "integer", "2"},
		{2, 1, "integer", "3"},
		{2, 2, "integer", "4"},
	}, frameCells(t, df))
}

func TestMeltMissingExample(t *testing.T) {
	src, err := source.NewStringSource("1 NA\n")
	assert.NoError(t, err)

	df, err := MeltTable(src)
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "integer", "1"},
		{1, 2, "missing", "NA"},
	}, frameCells(t, df))
}

func TestMeltReturnsCellCount(t *testing.T) {
	engine := newCSVEngine(t, "a,b\nc,d\ne,f\n")

	n, err := engine.Melt(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestMeltExhaustedStreamReturnsSentinel(t *testing.T) {
	engine := newCSVEngine(t, "a\n")

	n, err := engine.Melt(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = engine.Melt(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, -1, n)

	// and it stays exhausted
	n, err = engine.Melt(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, -1, n)
}

func TestMeltEmptySource(t *testing.T) {
	engine := newCSVEngine(t, "")

	for i := 0; i < 3; i++ {
		df, err := engine.MeltToDataFrame(DefaultLocale(), -1)
		assert.NoError(t, err)
		assert.Equal(t, 4, len(df.Columns))
		assert.Equal(t, 0, df.NRow())
		assert.Equal(t, 0, len(df.Problems()))
	}
}

func TestMeltRowLimitRetainsBoundaryToken(t *testing.T) {
	engine := newCSVEngine(t, "a,b\nc,d\ne,f\n")
	locale := DefaultLocale()

	df, err := engine.MeltToDataFrame(locale, 1)
	assert.NoError(t, err)
	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "character", "b"},
	}, frameCells(t, df))

	df, err = engine.MeltToDataFrame(locale, 1)
	assert.NoError(t, err)
	assert.Equal(t, []cell{
		{2, 1, "character", "c"},
		{2, 2, "character", "d"},
	}, frameCells(t, df))

	df, err = engine.MeltToDataFrame(locale, 1)
	assert.NoError(t, err)
	assert.Equal(t, []cell{
		{3, 1, "character", "e"},
		{3, 2, "character", "f"},
	}, frameCells(t, df))

	df, err = engine.MeltToDataFrame(locale, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, df.NRow())
}

func TestMeltWindowingEquivalence(t *testing.T) {
	const input = "a,1\nb,2.5\nc,NA\nd,x\ne,TRUE\n"

	reference := frameCellsAll(t, input, []int{-1})

	partitions := [][]int{
		{1, 1, 1, 1, 1},
		{2, 3},
		{1, 4},
		{3, 2},
		{5},
		{2, 2, 2}, // over-asking past the end is fine
	}

	for _, partition := range partitions {
		t.Run(fmt.Sprintf("%v", partition), func(t *testing.T) {
			assert.Equal(t, reference, frameCellsAll(t, input, partition))
		})
	}
}

// frameCellsAll melts input with the given sequence of row limits and
// concatenates the resulting pages.
func frameCellsAll(t *testing.T, input string, limits []int) []cell {
	t.Helper()

	engine := newCSVEngine(t, input)
	locale := DefaultLocale()

	var cells []cell
	for _, limit := range limits {
		df, err := engine.MeltToDataFrame(locale, limit)
		assert.NoError(t, err)
		cells = append(cells, frameCells(t, df)...)
	}

	return cells
}

func TestMeltBufferGrowth(t *testing.T) {
	// one source row with far more cells than the rowLimit heuristic
	// (rowLimit*10) allocates, forcing the estimate-and-grow path
	fields := make([]string, 200)
	for i := range fields {
		fields[i] = fmt.Sprint(i)
	}
	input := strings.Join(fields, ",") + "\n"

	engine := newCSVEngine(t, input)

	df, err := engine.MeltToDataFrame(DefaultLocale(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 200, df.NRow())

	cells := frameCells(t, df)
	for i, c := range cells {
		assert.Equal(t, cell{1, i + 1, "integer", fmt.Sprint(i)}, c)
	}
}

func TestMeltDataTypeLabelsAreClosedSet(t *testing.T) {
	valid := map[string]bool{
		TypeLogical: true, TypeInteger: true, TypeDouble: true,
		TypeNumber: true, TypeDate: true, TypeTime: true,
		TypeDatetime: true, TypeCharacter: true, TypeMissing: true,
		TypeEmpty: true,
	}

	engine := newCSVEngine(t, "TRUE,1,2.5,1,234\nNA,,2019-01-02,12:30:00\nx,2019-01-02T03:04:05Z,y,z\n")

	df, err := engine.MeltToDataFrame(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.True(t, df.NRow() > 0)

	for _, label := range df.Columns[2].Strs {
		assert.True(t, valid[label])
	}
}

func TestMeltOutputCountMatchesTokenCount(t *testing.T) {
	const input = "a,b,c\nd\ne,f\n"

	tok := tokenizer.NewDelimTokenizer(',')
	tok.Tokenize([]byte(input))

	want := 0
	for tok.NextToken().Kind != tokenizer.EOF {
		want++
	}

	engine := newCSVEngine(t, input)
	n, err := engine.Melt(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, want, n)
}

func TestMeltProblemsAttachedAndCleared(t *testing.T) {
	engine := newCSVEngine(t, "\"unterminated")

	df, err := engine.MeltToDataFrame(DefaultLocale(), -1)
	assert.NoError(t, err)
	assert.Equal(t, 1, df.NRow())
	assert.Equal(t, 1, len(df.Problems()))

	// the sink was cleared along with the collectors
	assert.Equal(t, 0, len(engine.Problems()))
}

// brokenTokenizer violates the token protocol by emitting a kind the melt
// loop cannot classify.
type brokenTokenizer struct {
	tokenizer.Tokenizer
}

func (b *brokenTokenizer) NextToken() tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.TokenKind(99), Text: "?"}
}

func TestMeltProtocolViolationIsFatal(t *testing.T) {
	src, err := source.NewStringSource("a\n")
	assert.NoError(t, err)

	tok := &brokenTokenizer{Tokenizer: tokenizer.NewDelimTokenizer(',')}
	engine := NewMeltEngine(src, tok, DefaultCollectors(), false, nil)

	_, err = engine.Melt(DefaultLocale(), -1)
	assert.IsError(t, err, ErrInvalidToken)
}

func TestMeltCustomColumnNames(t *testing.T) {
	src, err := source.NewStringSource("a\n")
	assert.NoError(t, err)

	engine := NewMeltEngine(src, tokenizer.NewDelimTokenizer(','), DefaultCollectors(), false,
		[]string{"r", "c", "t", "v"})

	df, err := engine.MeltToDataFrame(DefaultLocale(), -1)
	assert.NoError(t, err)

	names := make([]string, len(df.Columns))
	for i, col := range df.Columns {
		names[i] = col.Name
	}
	assert.Equal(t, []string{"r", "c", "t", "v"}, names)
}
