package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosh-go/voshd/internal/ax"
	"github.com/vosh-go/voshd/internal/speech"
)

func TestNewSelectsStrategyByRole(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	row := gw.NewElement("row", nil)
	_, ok := New(ctx, gw, row).(*passThroughReader)
	assert.True(t, ok)

	outline := gw.NewElement("outline", nil)
	_, ok = New(ctx, gw, outline).(*containerReader)
	assert.True(t, ok)

	button := gw.NewElement("button", nil)
	_, ok = New(ctx, gw, button).(*genericReader)
	assert.True(t, ok)
}

func TestGenericReadFullSequence(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("checkBox", ax.Attrs{
		ax.AttrTitle:           ax.String("Remember me"),
		ax.AttrValue:           ax.Bool(true),
		ax.AttrRoleDescription: ax.String("checkbox"),
		ax.AttrSelected:        ax.Bool(true),
		ax.AttrEnabled:         ax.Bool(false),
		ax.AttrHelp:            ax.String("Keeps you signed in"),
	})

	got := New(ctx, gw, el).Read(ctx)
	want := []speech.Token{
		speech.Label("Remember me"),
		speech.BoolValue(true),
		speech.Role("checkbox"),
		speech.Selected,
		speech.Disabled,
		speech.Help("Keeps you signed in"),
	}
	assert.Equal(t, want, got)
}

func TestGenericReadLabelFallsBackToTitleElementThenDescription(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	labelEl := gw.NewElement("staticText", ax.Attrs{ax.AttrTitle: ax.String("Username")})
	field := gw.NewElement("textField", ax.Attrs{ax.AttrTitleElement: ax.ElementValue(labelEl)})
	got := New(ctx, gw, field).Read(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, speech.Label("Username"), got[0])

	onlyDesc := gw.NewElement("textField", ax.Attrs{ax.AttrDescription: ax.String("search box")})
	got = New(ctx, gw, onlyDesc).Read(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, speech.Label("search box"), got[0])
}

func TestGenericReadRoleSuppressedWhenDescriptionPresent(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("button", ax.Attrs{
		ax.AttrTitle:           ax.String("Go"),
		ax.AttrDescription:     ax.String("navigates forward"),
		ax.AttrRoleDescription: ax.String("button"),
	})
	got := New(ctx, gw, el).Read(ctx)
	// readLabel prefers title over description, so description's only effect
	// here is suppressing the role token.
	assert.Equal(t, []speech.Token{speech.Label("Go")}, got)
}

func TestGenericReadValueDescriptionOverridesValue(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("slider", ax.Attrs{
		ax.AttrValue:            ax.Int64(5),
		ax.AttrValueDescription: ax.String("five out of ten"),
	})
	got := New(ctx, gw, el).Read(ctx)
	assert.Equal(t, []speech.Token{speech.StringValue("five out of ten")}, got)
}

func TestGenericReadStringValueCarriesSelectedText(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", ax.Attrs{
		ax.AttrValue:        ax.String("hello world"),
		ax.AttrSelectedText: ax.String("world"),
		ax.AttrPlaceholder:  ax.String("type here"),
		ax.AttrEdited:       ax.Bool(true),
	})
	got := New(ctx, gw, el).Read(ctx)
	assert.Equal(t, []speech.Token{
		speech.StringValue("hello world"),
		speech.SelectedText("world"),
		speech.Edited,
		speech.PlaceholderValue("type here"),
	}, got)
}

func TestGenericReadSummaryOmitsRoleStateHelp(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("checkBox", ax.Attrs{
		ax.AttrTitle:           ax.String("Remember me"),
		ax.AttrValue:           ax.Bool(true),
		ax.AttrRoleDescription: ax.String("checkbox"),
		ax.AttrHelp:            ax.String("ignored in summaries"),
	})
	got := New(ctx, gw, el).ReadSummary(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Remember me"), speech.BoolValue(true)}, got)
}

func TestContainerReadAppendsSelectedChildrenCount(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	table := gw.NewElement("table", ax.Attrs{ax.AttrTitle: ax.String("Files")})
	a := gw.NewElement("cell", nil)
	b := gw.NewElement("cell", nil)
	gw.SetAttr(table, ax.AttrSelectedCells, ax.ArrayValue([]ax.Value{ax.ElementValue(a), ax.ElementValue(b)}))

	got := New(ctx, gw, table).Read(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Files"), speech.SelectedChildrenCount(2)}, got)
}

func TestContainerReadSingleSelectedChildDelegatesToItsSummary(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	table := gw.NewElement("table", nil)
	row := gw.NewElement("row", nil)
	nameCell := gw.NewElement("staticText", ax.Attrs{ax.AttrTitle: ax.String("Alice")})
	gw.AppendChild(row, nameCell)
	gw.SetAttr(table, ax.AttrSelectedRows, ax.ArrayValue([]ax.Value{ax.ElementValue(row)}))

	got := New(ctx, gw, table).Read(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Alice")}, got, "single selection delegates through the row's own ReadSummary, which concatenates its children")
}

func TestContainerReadSummaryAppendsRowAndColumnCounts(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	table := gw.NewElement("table", ax.Attrs{ax.AttrTitle: ax.String("Files")})
	gw.SetAttr(table, ax.AttrRows, ax.ArrayValue([]ax.Value{ax.ElementValue(gw.NewElement("row", nil)), ax.ElementValue(gw.NewElement("row", nil))}))
	gw.SetAttr(table, ax.AttrColumns, ax.ArrayValue([]ax.Value{ax.ElementValue(gw.NewElement("column", nil))}))

	got := New(ctx, gw, table).ReadSummary(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Files"), speech.RowCount(2), speech.ColumnCount(1)}, got)
}

func TestPassThroughReadSummaryConcatenatesChildren(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	row := gw.NewElement("row", nil)
	c1 := gw.NewElement("staticText", ax.Attrs{ax.AttrTitle: ax.String("Name")})
	c2 := gw.NewElement("staticText", ax.Attrs{ax.AttrTitle: ax.String("Alice")})
	gw.AppendChild(row, c1)
	gw.AppendChild(row, c2)

	got := New(ctx, gw, row).ReadSummary(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Name"), speech.Label("Alice")}, got, "passThrough has no label of its own; it concatenates each child's own summary")
}

func TestPassThroughReadFallsBackToGenericRead(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	row := gw.NewElement("row", ax.Attrs{ax.AttrTitle: ax.String("Row 1")})
	got := New(ctx, gw, row).Read(ctx)
	assert.Equal(t, []speech.Token{speech.Label("Row 1")}, got)
}

func TestSelectionDeltaFirstCallSeedsWithNoTokens(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 0))

	r := New(ctx, gw, el)
	got := r.SelectionDelta(ctx, false, false, false)
	assert.Empty(t, got, "the first observed range only seeds the cache")
}

func TestSelectionDeltaCaretMoveSpeaksRangeBetweenOldAndNew(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 0))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(5, 0))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("hello"))

	got := r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.StringValue("hello")}, got)
}

func TestSelectionDeltaUnchangedRangeWithArrowDownEmitsBoundary(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(3, 0))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	got := r.SelectionDelta(ctx, true, false, false)
	assert.Equal(t, []speech.Token{speech.Boundary}, got)
}

func TestSelectionDeltaUnchangedRangeWithoutArrowEmitsNothing(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(3, 0))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	got := r.SelectionDelta(ctx, false, false, false)
	assert.Empty(t, got)
}

func TestSelectionDeltaGrowingFromSameStartRendersGrewToken(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 5))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 11))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String(" world"))

	got := r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.SelectedTextGrew(" world")}, got)
}

func TestSelectionDeltaShrinkingFromSameEndRendersShrankToken(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 11))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(6, 5))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("hello "))

	got := r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.SelectedTextShrank("hello ")}, got)
}

func TestSelectionDeltaDisjointRangeSpeaksBothThenSelected(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 3))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(10, 4))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("same-for-both-queries"))

	got := r.SelectionDelta(ctx, false, false, false)
	require.Len(t, got, 3)
	assert.Equal(t, speech.Selected, got[2])
}

// TestSelectionDeltaScenario6EdgeGrowThenShrinkMatchesSpecWorkedExample
// drives the contract's Scenario 6 worked example verbatim: a text field
// with value "abcdef", starting at selection [0,0), growing to [0,3) then
// [0,5), then shrinking to [0,2). This module renders the edge delta as
// SelectedTextGrew/SelectedTextShrank rather than the literal
// stringValue(delta)+selected/unselected pairing the worked example
// describes — see DESIGN.md's Open Question resolutions for why — so the
// assertions below check the chosen tokens' text against the spec's own
// numbers rather than the spec's literal token names.
func TestSelectionDeltaScenario6EdgeGrowThenShrinkMatchesSpecWorkedExample(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textField", ax.Attrs{ax.AttrValue: ax.String("abcdef")})
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 0))
	r := New(ctx, gw, el)
	require.Empty(t, r.SelectionDelta(ctx, false, false, false), "establishing the initial [0,0) baseline speaks nothing")

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 3))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("abc"))
	got := r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.SelectedTextGrew("abc")}, got, "[0,0) -> [0,3): delta is 'abc'")

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 5))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("de"))
	got = r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.SelectedTextGrew("de")}, got, "[0,3) -> [0,5): delta is 'de'")

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 2))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("cde"))
	got = r.SelectionDelta(ctx, false, false, false)
	assert.Equal(t, []speech.Token{speech.SelectedTextShrank("cde")}, got, "[0,5) -> [0,2): delta is 'cde'")
}

func TestSelectionDeltaVerticalArrowSpeaksCurrentLine(t *testing.T) {
	gw := ax.NewMockGateway()
	ctx := context.Background()

	el := gw.NewElement("textArea", nil)
	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(0, 0))
	r := New(ctx, gw, el)
	r.SelectionDelta(ctx, false, false, false)

	gw.SetAttr(el, ax.AttrSelectedTextRange, ax.Rng(20, 0))
	gw.SetQueryResult(el, ax.QueryLineForIndex, ax.Int64(2))
	gw.SetQueryResult(el, ax.QueryRangeForLine, ax.Rng(18, 10))
	gw.SetQueryResult(el, ax.QueryStringForRange, ax.String("third line"))

	got := r.SelectionDelta(ctx, true, true, false)
	assert.Equal(t, []speech.Token{speech.StringValue("third line")}, got)
}
