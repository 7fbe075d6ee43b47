// Package css is the CSS collaborator: it parses style-sheet text extracted
// from <style> elements into a rule list with selector specificity, computes
// the cascaded declarations for an element, and resolves named color values.
package css

import (
	"strings"

	"github.com/andybalholm/cascadia"
	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// Declaration is a single property:value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

type rule struct {
	selector     cascadia.Sel
	specificity  cascadia.Specificity
	declarations []Declaration
	order        int
}

// Stylesheet is an ordered rule list accumulated over one document.
type Stylesheet struct {
	rules []rule
}

type propState struct {
	val       string
	spec      cascadia.Specificity
	order     int
	important bool
}

// ParseStyle parses one <style> block and appends its rules to prev, which
// may be nil. The previous sheet is returned unchanged on error.
func ParseStyle(prev *Stylesheet, data []byte) (*Stylesheet, error) {
	txt := strings.TrimSpace(string(data))
	if txt == "" {
		return prev, nil
	}
	sheet, err := parser.Parse(txt)
	if err != nil {
		return prev, err
	}

	ss := prev
	if ss == nil {
		ss = &Stylesheet{}
	}
	order := len(ss.rules)

	var walk func([]*cssast.Rule)
	walk = func(list []*cssast.Rule) {
		for _, r := range list {
			if r == nil {
				continue
			}
			switch r.Kind {
			case cssast.AtRule:
				name := strings.ToLower(strings.TrimSpace(r.Name))
				switch name {
				case "@media":
					if mediaTypeActive(r.Prelude) {
						walk(r.Rules)
					}
				case "@supports":
					walk(r.Rules)
				case "@import":
					// remote sheets are out of scope for mail parts
				default:
					if r.EmbedsRules() {
						walk(r.Rules)
					}
				}
			case cssast.QualifiedRule:
				decls := convertDeclarations(r.Declarations)
				if len(decls) == 0 || len(r.Selectors) == 0 {
					continue
				}
				group, err := cascadia.ParseGroup(strings.Join(r.Selectors, ","))
				if err != nil {
					continue
				}
				for _, sel := range group {
					if sel == nil || sel.PseudoElement() != "" {
						continue
					}
					ss.rules = append(ss.rules, rule{
						selector:     sel,
						specificity:  sel.Specificity(),
						declarations: decls,
						order:        order,
					})
					order++
				}
			}
		}
	}
	walk(sheet.Rules)

	if len(ss.rules) == 0 {
		return prev, nil
	}
	return ss, nil
}

// Empty reports whether the sheet carries no rules.
func (ss *Stylesheet) Empty() bool {
	return ss == nil || len(ss.rules) == 0
}

// Rules reports the number of rules in the sheet.
func (ss *Stylesheet) Rules() int {
	if ss == nil {
		return 0
	}
	return len(ss.rules)
}

// ComputeStyle cascades every matching rule for n and returns the winning
// value per property. The result is nil when nothing matches.
func (ss *Stylesheet) ComputeStyle(n *html.Node) map[string]string {
	if ss == nil || n == nil || n.Type != html.ElementNode {
		return nil
	}
	props := map[string]propState{}
	for _, r := range ss.rules {
		if r.selector == nil || !r.selector.Match(n) {
			continue
		}
		for _, decl := range r.declarations {
			applyDeclaration(props, decl, r.specificity, r.order)
		}
	}
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, st := range props {
		out[k] = st.val
	}
	return out
}

func applyDeclaration(store map[string]propState, decl Declaration, spec cascadia.Specificity, order int) {
	prop := strings.ToLower(strings.TrimSpace(decl.Property))
	value := strings.TrimSpace(decl.Value)
	if prop == "" || value == "" {
		return
	}
	entry := propState{val: value, spec: spec, order: order, important: decl.Important}
	prev, ok := store[prop]
	if !ok {
		store[prop] = entry
		return
	}
	if prev.important && !decl.Important {
		return
	}
	if decl.Important && !prev.important {
		store[prop] = entry
		return
	}
	if prev.spec.Less(spec) {
		store[prop] = entry
		return
	}
	if spec.Less(prev.spec) {
		return
	}
	if order >= prev.order {
		store[prop] = entry
	}
}

func convertDeclarations(list []*cssast.Declaration) []Declaration {
	if len(list) == 0 {
		return nil
	}
	out := make([]Declaration, 0, len(list))
	for _, d := range list {
		if d == nil {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		val := strings.TrimSpace(d.Value)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Declaration{Property: prop, Value: val, Important: d.Important})
	}
	return out
}

// mediaTypeActive keeps rules for continuous visual media and drops the
// rest. Feature queries are accepted as-is; mail clients ignore them anyway.
func mediaTypeActive(prelude string) bool {
	if strings.TrimSpace(prelude) == "" {
		return true
	}
	for _, raw := range strings.Split(prelude, ",") {
		query := strings.ToLower(strings.TrimSpace(raw))
		if query == "" {
			continue
		}
		fields := strings.Fields(query)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "(") {
			return true
		}
		switch fields[0] {
		case "all", "screen", "handheld", "projection", "only", "not":
			return true
		case "print", "speech", "aural", "braille", "embossed", "tty", "tv":
			continue
		default:
			return true
		}
	}
	return false
}
