package htmllabel_test

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/hverr/gviz/htmllabel"
)

func TestParse(t *testing.T) {
	t.Run("PlainText", func(t *testing.T) {
		lbl, err := htmllabel.Parse("hello world")
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Text)
		assert.EqualValues(t, len(lbl.Text.Spans), 1, "span count")
		assert.EqualValues(t, lbl.Text.Spans[0].Text, "hello world", "span text")
	})

	t.Run("EntitiesResolve", func(t *testing.T) {
		lbl, err := htmllabel.Parse("a &lt;= b &amp; c &#65; &#x42;")
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Text)
		assert.EqualValues(t, lbl.Text.Spans[0].Text, "a <= b & c A B", "entity resolution")
	})

	t.Run("TableWithOneRowTwoCells", func(t *testing.T) {
		lbl, err := htmllabel.Parse(`<TABLE BORDER="1" CELLBORDER="1"><TR><TD>x</TD><TD>y</TD></TR></TABLE>`)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Table)

		tbl := lbl.Table
		assert.EqualValues(t, tbl.Border, 1, "border attribute")
		assert.EqualValues(t, tbl.CellBorder, 1, "cellborder attribute")
		assert.EqualValues(t, len(tbl.Body), 1, "row count")
		assert.EqualValues(t, len(tbl.Body[0].Cells), 2, "cell count")
		require.NotNil(t, tbl.Body[0].Cells[0].Text)
		assert.EqualValues(t, tbl.Body[0].Cells[0].Text.Spans[0].Text, "x", "first cell text")
	})

	t.Run("FontStackInheritsAndPops", func(t *testing.T) {
		lbl, err := htmllabel.Parse(`<FONT FACE="Courier" POINT-SIZE="10">a<FONT COLOR="red">b</FONT>c</FONT>d`)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Text)

		spans := lbl.Text.Spans
		// a, b, c and d become one span each, keeping their font scopes
		text := ""
		for _, s := range spans {
			text += s.Text
		}
		assert.EqualValues(t, text, "abcd", "all text survives")
		assert.EqualValues(t, len(spans), 4, "span count")
		assert.EqualValues(t, spans[1].Font.Face, "Courier", "inner font inherits the face")
		assert.EqualValues(t, spans[1].Font.Color, "red", "inner font sets the color")
		assert.EqualValues(t, spans[2].Font.Color, "", "closing the inner font pops its color")
		assert.EqualValues(t, spans[3].Font.Face, "", "closing the outer font pops its face")
	})

	t.Run("StyleTagsSetFontFlags", func(t *testing.T) {
		lbl, err := htmllabel.Parse(`<B>bold</B> plain`)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Text)
		assert.True(t, lbl.Text.Spans[0].Font.Bold)
	})

	t.Run("BreaksSplitSpans", func(t *testing.T) {
		lbl, err := htmllabel.Parse(`one<BR/>two`)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Text)
		assert.EqualValues(t, len(lbl.Text.Spans), 2, "span count")
		assert.True(t, lbl.Text.Spans[0].Break)
	})

	t.Run("SpanTilingChecked", func(t *testing.T) {
		// 2x2 grid tiled by one rowspan=2 cell plus two single cells
		in := `<TABLE>
			<TR><TD ROWSPAN="2">a</TD><TD>b</TD></TR>
			<TR><TD>c</TD></TR>
		</TABLE>`
		lbl, err := htmllabel.Parse(in)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Table)
		assert.NoError(t, lbl.Table.CheckTiling(), "spans tile exactly")
	})

	t.Run("OutOfRangeIntegersClip", func(t *testing.T) {
		lbl, err := htmllabel.Parse(`<TABLE BORDER="999"><TR><TD COLSPAN="0">x</TD></TR></TABLE>`)
		require.NoError(t, err, "Parse")
		require.NotNil(t, lbl.Table)
		assert.EqualValues(t, lbl.Table.Border, 255, "border clips to max")
		assert.EqualValues(t, lbl.Table.Body[0].Cells[0].ColSpan, 1, "colspan clips to min")
	})

	t.Run("Rejected", func(t *testing.T) {
		tests := map[string]string{
			"UnknownTag":       "<BLINK>x</BLINK>",
			"UnbalancedTable":  "<TABLE><TR><TD>x</TD></TR>",
			"UnbalancedClose":  "x</B>",
			"MixedCellContent": `<TABLE><TR><TD>x<TABLE><TR><TD>y</TD></TR></TABLE></TD></TR></TABLE>`,
			"TextBetweenRows":  "<TABLE>stray<TR><TD>x</TD></TR></TABLE>",
			"UnknownEntity":    "a &nope; b",
			"UnknownAttr":      `<TABLE FROBNICATE="1"></TABLE>`,
			"OverlappingSpans": `<TABLE><TR><TD ROWSPAN="2">a</TD><TD>b</TD></TR><TR><TD COLSPAN="2">c</TD></TR></TABLE>`,
		}
		for name, in := range tests {
			t.Run(name, func(t *testing.T) {
				lbl, err := htmllabel.Parse(in)
				require.NotNil(t, err)
				assert.True(t, lbl == nil)
				assert.True(t, strings.HasPrefix(err.Error(), "label:"), "diagnostic carries the label line, got %q", err)
			})
		}
	})
}
