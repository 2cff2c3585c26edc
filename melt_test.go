package meltr

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/cran/meltr/source"
	"github.com/cran/meltr/tokenizer"
)

func mustSource(t *testing.T, input string) *source.StringSource {
	t.Helper()

	src, err := source.NewStringSource(input)
	assert.NoError(t, err)

	return src
}

func TestMeltCSV(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "a,1\nb,NA\n"))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "integer", "1"},
		{2, 1, "character", "b"},
		{2, 2, "missing", "NA"},
	}, frameCells(t, df))
}

func TestMeltTSV(t *testing.T) {
	df, err := MeltTSV(mustSource(t, "a\tb\n"))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "character", "b"},
	}, frameCells(t, df))
}

func TestMeltDelimWithOptions(t *testing.T) {
	df, err := MeltDelim(mustSource(t, "x; -; y\n"), ';',
		WithNA("-"), WithTrimWS())
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "x"},
		{1, 2, "missing", "-"},
		{1, 3, "character", "y"},
	}, frameCells(t, df))
}

func TestMeltCSVWithRowLimit(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "a,1\nb,2\nc,3\n"), WithRowLimit(2))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "integer", "1"},
		{2, 1, "character", "b"},
		{2, 2, "integer", "2"},
	}, frameCells(t, df))
}

func TestMeltCSVEmptySource(t *testing.T) {
	df, err := MeltCSV(mustSource(t, ""))
	assert.NoError(t, err)

	assert.Equal(t, 4, len(df.Columns))
	assert.Equal(t, 0, df.NRow())
	assert.Equal(t, "row", df.Columns[0].Name)
	assert.Equal(t, "value", df.Columns[3].Name)
}

func TestMeltFWF(t *testing.T) {
	const input = "john  25\nmary  31\n"

	df, err := MeltFWF(mustSource(t, input), tokenizer.GuessFWFPositions([]byte(input)))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "john"},
		{1, 2, "integer", "25"},
		{2, 1, "character", "mary"},
		{2, 2, "integer", "31"},
	}, frameCells(t, df))
}

func TestMeltCSVWithLocale(t *testing.T) {
	locale := DefaultLocale()
	locale.DecimalMark = ','
	locale.GroupingMark = '.'

	df, err := MeltDelim(mustSource(t, "1,5;x\n"), ';', WithLocale(locale))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "double", "1,5"},
		{1, 2, "character", "x"},
	}, frameCells(t, df))
}

func TestMeltCSVSkipAndComment(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "header line\n# note\na,b\n"),
		WithSkip(1), WithComment("#"))
	assert.NoError(t, err)

	assert.Equal(t, []cell{
		{1, 1, "character", "a"},
		{1, 2, "character", "b"},
	}, frameCells(t, df))
}

func TestFrameWriteCSV(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "a,\"x,y\"\n"))
	assert.NoError(t, err)

	var b strings.Builder
	assert.NoError(t, df.WriteCSV(&b))

	assert.Equal(t,
		"row,col,data_type,value\n1,1,character,a\n1,2,character,\"x,y\"\n",
		b.String())
}

func TestFrameWriteCSVBodyHasNoHeader(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "a\n"))
	assert.NoError(t, err)

	var b strings.Builder
	assert.NoError(t, df.WriteCSVBody(&b))

	assert.Equal(t, "1,1,character,a\n", b.String())
}

func TestFrameString(t *testing.T) {
	df, err := MeltCSV(mustSource(t, "a\n"))
	assert.NoError(t, err)

	rendered := df.String()
	assert.Contains(t, rendered, "data_type")
	assert.Contains(t, rendered, "character")
}
