// Package controls describes the intrinsic VB form controls: their
// properties, events and methods. The catalog is embedded as KDL and parsed
// once on first use.
package controls

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

//go:embed catalog.kdl
var catalogKDL string

// EnumValue is one allowed value of an enumerated property.
type EnumValue struct {
	Value       int
	Name        string
	Description string
}

type Property struct {
	Name        string
	Type        string
	Description string
	Default     string
	HasDefault  bool
	ReadOnly    bool
	Values      []EnumValue
}

// Event is a control event. Parameters is the parameter list without
// parentheses, empty for parameterless events.
type Event struct {
	Name        string
	Description string
	Parameters  string
}

// HandlerSignature renders the event procedure header for a control, e.g.
// "Private Sub txtName_Change()".
func (e Event) HandlerSignature(control string) string {
	return "Private Sub " + control + "_" + e.Name + "(" + e.Parameters + ")"
}

type Method struct {
	Name        string
	Description string
	Signature   string
	ReturnType  string
}

// Control is one control type.
type Control struct {
	Name        string // TextBox
	FullName    string // VB.TextBox
	Description string
	Container   bool
	Properties  []Property
	Events      []Event
	Methods     []Method
}

func (c *Control) Property(name string) (*Property, bool) {
	for i := range c.Properties {
		if strings.EqualFold(c.Properties[i].Name, name) {
			return &c.Properties[i], true
		}
	}
	return nil, false
}

func (c *Control) Event(name string) (*Event, bool) {
	for i := range c.Events {
		if strings.EqualFold(c.Events[i].Name, name) {
			return &c.Events[i], true
		}
	}
	return nil, false
}

func (c *Control) Method(name string) (*Method, bool) {
	for i := range c.Methods {
		if strings.EqualFold(c.Methods[i].Name, name) {
			return &c.Methods[i], true
		}
	}
	return nil, false
}

// Catalog indexes controls by short and full name, ignoring case.
type Catalog struct {
	controls []*Control
	byName   map[string]*Control
}

// Lookup finds a control by "TextBox" or "VB.TextBox", in any case.
func (c *Catalog) Lookup(typeName string) (*Control, bool) {
	ctl, ok := c.byName[strings.ToLower(strings.TrimSpace(typeName))]
	return ctl, ok
}

// Names returns the short names of all controls, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.controls))
	for i, ctl := range c.controls {
		names[i] = ctl.Name
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int { return len(c.controls) }

var defaultCatalog = sync.OnceValue(func() *Catalog {
	cat, err := Parse(strings.NewReader(catalogKDL))
	if err != nil {
		panic(fmt.Sprintf("controls: embedded catalog: %v", err))
	}
	return cat
})

// Default returns the embedded catalog of intrinsic controls.
func Default() *Catalog {
	return defaultCatalog()
}

// Lookup is shorthand for Default().Lookup.
func Lookup(typeName string) (*Control, bool) {
	return Default().Lookup(typeName)
}

type members struct {
	properties []Property
	events     []Event
	methods    []Method
}

// Parse reads a catalog in KDL form. Members of a control replace same-named
// members pulled in from its groups.
func Parse(r io.Reader) (*Catalog, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse control catalog: %w", err)
	}

	groups := make(map[string]*members)
	var controlNodes []*document.Node
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "group":
			name, ok := stringArg(n, 0)
			if !ok {
				return nil, fmt.Errorf("group without a name")
			}
			m := &members{}
			for _, cn := range n.Children {
				if err := m.add(cn); err != nil {
					return nil, fmt.Errorf("group %q: %w", name, err)
				}
			}
			groups[name] = m
		case "control":
			controlNodes = append(controlNodes, n)
		}
	}

	cat := &Catalog{byName: make(map[string]*Control)}
	for _, n := range controlNodes {
		ctl, err := parseControl(n, groups)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.byName[strings.ToLower(ctl.Name)]; dup {
			return nil, fmt.Errorf("control %q defined twice", ctl.Name)
		}
		cat.controls = append(cat.controls, ctl)
		cat.byName[strings.ToLower(ctl.Name)] = ctl
		if ctl.FullName != "" {
			cat.byName[strings.ToLower(ctl.FullName)] = ctl
		}
	}
	return cat, nil
}

func parseControl(n *document.Node, groups map[string]*members) (*Control, error) {
	name, ok := stringArg(n, 0)
	if !ok {
		return nil, fmt.Errorf("control without a name")
	}
	ctl := &Control{Name: name}
	ctl.FullName, _ = stringArg(n, 1)

	m := &members{}
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "description":
			ctl.Description, _ = stringArg(cn, 0)
		case "container":
			ctl.Container = true
		case "use":
			for _, g := range stringArgs(cn) {
				group, ok := groups[g]
				if !ok {
					return nil, fmt.Errorf("control %q uses unknown group %q", name, g)
				}
				m.merge(group)
			}
		default:
			if err := m.add(cn); err != nil {
				return nil, fmt.Errorf("control %q: %w", name, err)
			}
		}
	}
	ctl.Properties, ctl.Events, ctl.Methods = m.properties, m.events, m.methods
	return ctl, nil
}

func (m *members) add(n *document.Node) error {
	kind := nodeName(n)
	name, ok := stringArg(n, 0)
	if !ok {
		return fmt.Errorf("%s without a name", kind)
	}
	switch kind {
	case "property":
		p := Property{Name: name}
		p.Type, _ = stringArg(n, 1)
		p.Description, _ = stringArg(n, 2)
		for _, cn := range n.Children {
			switch nodeName(cn) {
			case "default":
				p.Default, p.HasDefault = stringArg(cn, 0)
			case "readonly":
				p.ReadOnly = true
			case "value":
				v, ok := intArg(cn, 0)
				if !ok {
					return fmt.Errorf("property %q: value without a number", name)
				}
				ev := EnumValue{Value: v}
				ev.Name, _ = stringArg(cn, 1)
				ev.Description, _ = stringArg(cn, 2)
				p.Values = append(p.Values, ev)
			}
		}
		m.putProperty(p)
	case "event":
		e := Event{Name: name}
		e.Description, _ = stringArg(n, 1)
		e.Parameters, _ = stringArg(n, 2)
		m.putEvent(e)
	case "method":
		meth := Method{Name: name}
		meth.Description, _ = stringArg(n, 1)
		meth.Signature, _ = stringArg(n, 2)
		for _, cn := range n.Children {
			if nodeName(cn) == "returns" {
				meth.ReturnType, _ = stringArg(cn, 0)
			}
		}
		m.putMethod(meth)
	default:
		return fmt.Errorf("unknown member %q", kind)
	}
	return nil
}

func (m *members) merge(o *members) {
	for _, p := range o.properties {
		m.putProperty(p)
	}
	for _, e := range o.events {
		m.putEvent(e)
	}
	for _, meth := range o.methods {
		m.putMethod(meth)
	}
}

func (m *members) putProperty(p Property) {
	for i := range m.properties {
		if strings.EqualFold(m.properties[i].Name, p.Name) {
			m.properties[i] = p
			return
		}
	}
	m.properties = append(m.properties, p)
}

func (m *members) putEvent(e Event) {
	for i := range m.events {
		if strings.EqualFold(m.events[i].Name, e.Name) {
			m.events[i] = e
			return
		}
	}
	m.events = append(m.events, e)
}

func (m *members) putMethod(meth Method) {
	for i := range m.methods {
		if strings.EqualFold(m.methods[i].Name, meth.Name) {
			m.methods[i] = meth
			return
		}
	}
	m.methods = append(m.methods, meth)
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func stringArg(n *document.Node, i int) (string, bool) {
	if i >= len(n.Arguments) {
		return "", false
	}
	s, ok := n.Arguments[i].Value.(string)
	return s, ok
}

func intArg(n *document.Node, i int) (int, bool) {
	if i >= len(n.Arguments) {
		return 0, false
	}
	switch v := n.Arguments[i].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func stringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
