package speech

import "fmt"

// TokenKind is the closed set of semantic output tokens the Navigator and
// Semantic Reader emit. Every value the Scheduler renders to an utterance
// switches on this.
type TokenKind int

const (
	TokApplication TokenKind = iota
	TokWindow
	TokLabel
	TokRole
	TokBoolValue
	TokIntValue
	TokFloatValue
	TokStringValue
	TokURLValue
	TokPlaceholderValue
	TokSelectedText
	TokSelectedTextGrew
	TokSelectedTextShrank
	TokInsertedText
	TokRemovedText
	TokHelp
	TokUpdatedLabel
	TokEdited
	TokSelected
	TokDisabled
	TokEntering
	TokExiting
	TokNext
	TokPrevious
	TokNoFocus
	TokBoundary
	TokRowCount
	TokColumnCount
	TokSelectedChildrenCount
	TokCapsLockStatusChanged
	TokAPIDisabled
	TokNotAccessible
	TokTimeout
)

// Token is a tagged variant: Kind selects which payload field is live.
type Token struct {
	Kind TokenKind
	S    string
	B    bool
	I    int64
	F    float64
	N    int
}

func Application(name string) Token { return Token{Kind: TokApplication, S: name} }
func Window(name string) Token      { return Token{Kind: TokWindow, S: name} }
func Label(s string) Token          { return Token{Kind: TokLabel, S: s} }
func Role(s string) Token           { return Token{Kind: TokRole, S: s} }
func BoolValue(b bool) Token        { return Token{Kind: TokBoolValue, B: b} }
func IntValue(i int64) Token        { return Token{Kind: TokIntValue, I: i} }
func FloatValue(f float64) Token    { return Token{Kind: TokFloatValue, F: f} }
func StringValue(s string) Token    { return Token{Kind: TokStringValue, S: s} }
func URLValue(s string) Token       { return Token{Kind: TokURLValue, S: s} }
func PlaceholderValue(s string) Token    { return Token{Kind: TokPlaceholderValue, S: s} }
func SelectedText(s string) Token        { return Token{Kind: TokSelectedText, S: s} }
func SelectedTextGrew(s string) Token    { return Token{Kind: TokSelectedTextGrew, S: s} }
func SelectedTextShrank(s string) Token  { return Token{Kind: TokSelectedTextShrank, S: s} }
func InsertedText(s string) Token        { return Token{Kind: TokInsertedText, S: s} }
func RemovedText(s string) Token         { return Token{Kind: TokRemovedText, S: s} }
func Help(s string) Token                { return Token{Kind: TokHelp, S: s} }
func UpdatedLabel(s string) Token        { return Token{Kind: TokUpdatedLabel, S: s} }
func RowCount(n int) Token               { return Token{Kind: TokRowCount, N: n} }
func ColumnCount(n int) Token            { return Token{Kind: TokColumnCount, N: n} }
func SelectedChildrenCount(n int) Token  { return Token{Kind: TokSelectedChildrenCount, N: n} }
func CapsLockStatusChanged(b bool) Token { return Token{Kind: TokCapsLockStatusChanged, B: b} }

var (
	Edited       = Token{Kind: TokEdited}
	Selected     = Token{Kind: TokSelected}
	Disabled     = Token{Kind: TokDisabled}
	Entering     = Token{Kind: TokEntering}
	Exiting      = Token{Kind: TokExiting}
	Next         = Token{Kind: TokNext}
	Previous     = Token{Kind: TokPrevious}
	NoFocus      = Token{Kind: TokNoFocus}
	Boundary     = Token{Kind: TokBoundary}
	APIDisabled  = Token{Kind: TokAPIDisabled}
	NotAccessible = Token{Kind: TokNotAccessible}
	Timeout      = Token{Kind: TokTimeout}
)

// Render renders a token to its utterance text per the literal rendering
// rules tests pin down. Control tokens (boundary/next/previous) render to
// the empty string and must not be spoken; renderUtterances and
// Batch.EnqueueToken filter them out before they reach the TTS device.
func Render(t Token) string {
	switch t.Kind {
	case TokApplication, TokWindow, TokLabel, TokRole, TokStringValue, TokURLValue,
		TokPlaceholderValue, TokSelectedText, TokSelectedTextGrew, TokSelectedTextShrank,
		TokInsertedText, TokRemovedText, TokHelp, TokUpdatedLabel:
		return t.S
	case TokBoolValue:
		if t.B {
			return "On"
		}
		return "Off"
	case TokIntValue:
		return fmt.Sprintf("%d", t.I)
	case TokFloatValue:
		return fmt.Sprintf("%g", t.F)
	case TokCapsLockStatusChanged:
		if t.B {
			return "CapsLock On"
		}
		return "CapsLock Off"
	case TokRowCount:
		return fmt.Sprintf("%d rows", t.N)
	case TokColumnCount:
		return fmt.Sprintf("%d columns", t.N)
	case TokSelectedChildrenCount:
		if t.N == 1 {
			return "1 selected child"
		}
		return fmt.Sprintf("%d selected children", t.N)
	case TokNoFocus:
		return "Nothing in focus"
	case TokNotAccessible:
		return "Application not accessible"
	case TokTimeout:
		return "Application is not responding"
	case TokAPIDisabled:
		return "Accessibility interface disabled"
	case TokDisabled:
		return "Disabled"
	case TokEdited:
		return "Edited"
	case TokEntering:
		return "Entering"
	case TokExiting:
		return "Exiting"
	case TokSelected:
		return "Selected"
	case TokBoundary, TokNext, TokPrevious:
		return ""
	default:
		return ""
	}
}

// Silent reports whether t is a control token that is never spoken.
func Silent(t Token) bool {
	switch t.Kind {
	case TokBoundary, TokNext, TokPrevious:
		return true
	default:
		return false
	}
}
