// Package nav implements the Navigator: the focus entity, the
// interestingness predicate that filters the raw accessibility tree into a
// user-navigable one, and the focus-movement operations.
package nav

// interestingRoles is the role set an element must belong to (subject to
// the web-area/leaf carve-out) to be considered interesting on role grounds
// alone — title/description/focus already qualify independently.
var interestingRoles = roleSet(
	"browser", "busyIndicator", "button", "cell", "checkBox", "colorWell",
	"comboBox", "dateField", "disclosureTriangle", "dockItem", "drawer",
	"grid", "growArea", "handle", "heading", "image", "levelIndicator",
	"link", "list", "menuBarItem", "menuItem", "menuButton", "outline",
	"popUpButton", "popover", "progressIndicator", "radioButton",
	"relevanceIndicator", "sheet", "slider", "staticText", "tabGroup",
	"table", "textArea", "textField", "timeField", "toolbar",
	"valueIndicator", "webArea",
)

// leafRoles are roles not expected to contain navigable descendants;
// getFirstChild skips over them rather than recursing in.
var leafRoles = roleSet(
	"busyIndicator", "button", "checkBox", "colorWell", "comboBox",
	"dateField", "disclosureTriangle", "dockItem", "heading", "image",
	"incrementer", "levelIndicator", "link", "menuBarItem", "menuButton",
	"menuItem", "popUpButton", "progressIndicator", "radioButton",
	"relevanceIndicator", "scrollBar", "slider", "staticText", "textArea",
	"textField", "timeField", "valueIndicator",
)

// rootRoles never have a parent for navigation purposes.
var rootRoles = roleSet("menu", "menuBar", "window")

// keyboardFocusableRoles are the roles keyboard-focus propagation applies
// to when the Navigator moves focus onto a new entity.
var keyboardFocusableRoles = roleSet(
	"button", "checkBox", "colorWell", "comboBox", "dateField",
	"incrementer", "link", "menuBarItem", "menuButton", "menuItem",
	"popUpButton", "radioButton", "slider", "textArea", "textField",
	"timeField",
)

func roleSet(roles ...string) map[string]bool {
	m := make(map[string]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

func isLeafRole(role string) bool              { return leafRoles[role] }
func isRootRole(role string) bool               { return rootRoles[role] }
func isKeyboardFocusableRole(role string) bool { return keyboardFocusableRoles[role] }
