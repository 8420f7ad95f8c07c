package browser

import "fmt"

// Strategy selects how a Selector is resolved on the page.
type Strategy int

// Locator strategies
const (
	ByCSS Strategy = iota
	ByRole
	ByLabel
	ByText
	ByPlaceholder
	ByTitle
	ByAltText
)

var strategyNames = map[Strategy]string{
	ByCSS:         "css",
	ByRole:        "role",
	ByLabel:       "label",
	ByText:        "text",
	ByPlaceholder: "placeholder",
	ByTitle:       "title",
	ByAltText:     "alt",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Selector describes an element independently of any driver.
type Selector struct {
	Strategy Strategy
	// Role is the ARIA role, only used with ByRole.
	Role string
	// Value is the CSS selector, or the accessible name, label, text,
	// placeholder, title or alt text to match.
	Value string
	Exact bool
}

// CSS matches a CSS selector.
func CSS(selector string) Selector {
	return Selector{Strategy: ByCSS, Value: selector}
}

// Role matches an ARIA role with an accessible name. An empty name matches any.
func Role(role, name string) Selector {
	return Selector{Strategy: ByRole, Role: role, Value: name}
}

// Heading matches a heading by its accessible name.
func Heading(name string) Selector {
	return Role("heading", name)
}

// Textbox matches a textbox by its accessible name.
func Textbox(name string) Selector {
	return Role("textbox", name)
}

// Button matches a button by its accessible name.
func Button(name string) Selector {
	return Role("button", name)
}

// Label matches a form control by its label text.
func Label(text string) Selector {
	return Selector{Strategy: ByLabel, Value: text}
}

// Text matches an element by its text content.
func Text(text string) Selector {
	return Selector{Strategy: ByText, Value: text}
}

// Placeholder matches an input by its placeholder.
func Placeholder(text string) Selector {
	return Selector{Strategy: ByPlaceholder, Value: text}
}

// Title matches an element by its title attribute.
func Title(text string) Selector {
	return Selector{Strategy: ByTitle, Value: text}
}

// AltText matches an image by its alt text.
func AltText(text string) Selector {
	return Selector{Strategy: ByAltText, Value: text}
}

// Exactly returns a copy of s that requires a case-sensitive whole-string match.
func (s Selector) Exactly() Selector {
	s.Exact = true
	return s
}

// IsZero reports whether s was never set.
func (s Selector) IsZero() bool {
	return s == Selector{}
}

func (s Selector) String() string {
	exact := ""
	if s.Exact {
		exact = " exact"
	}
	if s.Strategy == ByRole {
		return fmt.Sprintf("role=%s[name=%q%s]", s.Role, s.Value, exact)
	}
	return fmt.Sprintf("%s=%q%s", s.Strategy, s.Value, exact)
}
