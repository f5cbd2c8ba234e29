// Package xmlconv writes object graphs as XML through a node-oriented sink.
//
// A Converter is the domain.Sink handed to object marshallers. Nodes are
// opened with StartNode and closed with End; attributes are buffered on the
// open node until it receives content or a child, so marshallers may write
// attributes first and content afterwards, like a streaming XML writer.
package xmlconv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/zjrosen/domxml/internal/domain"
	"github.com/zjrosen/domxml/internal/metadata"
	"github.com/zjrosen/domxml/internal/proxy"
)

// Converter errors
var (
	ErrNoOpenNode         = errors.New("no open node")
	ErrAttributeAfterBody = errors.New("attribute written after node content")
	ErrUnsupported        = errors.New("no marshaller supports value")
	ErrCycle              = errors.New("circular reference")
)

// ObjectMarshaller converts values of the kinds it supports into the open node.
type ObjectMarshaller interface {
	Supports(v any) bool
	Marshal(v any, sink domain.Sink) error
}

// Options configure a Converter.
type Options struct {
	// Indent is the per-level indentation; empty writes compact XML.
	Indent string
	// Header writes the <?xml ...?> declaration before the root element.
	Header bool
	// StrictCycles fails on a circular reference instead of writing an empty node.
	StrictCycles bool
}

type node struct {
	name    string
	attrs   []xml.Attr
	written bool
}

type visitKey struct {
	t reflect.Type
	p uintptr
}

// Converter implements domain.Sink over an xml.Encoder. It is not safe for
// concurrent use; create one per document.
type Converter struct {
	enc         *xml.Encoder
	opts        Options
	stack       []*node
	marshallers []ObjectMarshaller
	visiting    map[visitKey]struct{}
}

var _ domain.Sink = (*Converter)(nil)

// NewConverter creates a converter writing to w with the default marshallers
// registered. Marshallers registered later take precedence.
func NewConverter(w io.Writer, opts Options) *Converter {
	enc := xml.NewEncoder(w)
	if opts.Indent != "" {
		enc.Indent("", opts.Indent)
	}
	c := &Converter{
		enc:      enc,
		opts:     opts,
		visiting: make(map[visitKey]struct{}),
	}
	for _, m := range defaultMarshallers() {
		c.Register(m)
	}
	return c
}

// Register adds m ahead of every previously registered marshaller.
func (c *Converter) Register(m ObjectMarshaller) {
	c.marshallers = append(c.marshallers, m)
}

// Attribute sets an attribute on the open node.
func (c *Converter) Attribute(name, value string) error {
	n, err := c.top()
	if err != nil {
		return err
	}
	if n.written {
		return fmt.Errorf("%s@%s: %w", n.name, name, ErrAttributeAfterBody)
	}
	for i := range n.attrs {
		if n.attrs[i].Name.Local == name {
			n.attrs[i].Value = value
			return nil
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return nil
}

// StartNode opens a child of the open node, or the root when none is open.
func (c *Converter) StartNode(name string) error {
	if len(c.stack) > 0 {
		if err := c.flushStart(c.stack[len(c.stack)-1]); err != nil {
			return err
		}
	}
	c.stack = append(c.stack, &node{name: name})
	return nil
}

// End closes the open node.
func (c *Converter) End() error {
	n, err := c.top()
	if err != nil {
		return err
	}
	if err := c.flushStart(n); err != nil {
		return err
	}
	c.stack = c.stack[:len(c.stack)-1]
	return c.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: n.name}})
}

// Text writes character data into the open node.
func (c *Converter) Text(s string) error {
	n, err := c.top()
	if err != nil {
		return err
	}
	if err := c.flushStart(n); err != nil {
		return err
	}
	return c.enc.EncodeToken(xml.CharData(s))
}

// ConvertAnother converts v into the open node with the most recently
// registered marshaller that supports it.
func (c *Converter) ConvertAnother(v any) error {
	v = unwrapProxy(v)
	if key, ok := identity(v); ok {
		if _, seen := c.visiting[key]; seen {
			if c.opts.StrictCycles {
				return fmt.Errorf("%s: %w", metadata.ClassName(v), ErrCycle)
			}
			return nil
		}
		c.visiting[key] = struct{}{}
		defer delete(c.visiting, key)
	}

	for _, m := range slices.Backward(c.marshallers) {
		if m.Supports(v) {
			return m.Marshal(v, c)
		}
	}
	return fmt.Errorf("%T: %w", v, ErrUnsupported)
}

// ElementName returns the node name for v as a collection element: its
// class name with the first letter lower-cased.
func (c *Converter) ElementName(v any) string {
	return ElementName(v)
}

// Depth returns the number of open nodes.
func (c *Converter) Depth() int {
	return len(c.stack)
}

// Flush writes buffered output. Every node must have been closed.
func (c *Converter) Flush() error {
	if len(c.stack) > 0 {
		return fmt.Errorf("flush with %d open nodes, innermost %q", len(c.stack), c.stack[len(c.stack)-1].name)
	}
	return c.enc.Flush()
}

func (c *Converter) top() (*node, error) {
	if len(c.stack) == 0 {
		return nil, ErrNoOpenNode
	}
	return c.stack[len(c.stack)-1], nil
}

func (c *Converter) flushStart(n *node) error {
	if n.written {
		return nil
	}
	n.written = true
	return c.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: n.name}, Attr: n.attrs})
}

// unwrapProxy replaces a proxy with its target so the target is what gets
// tracked for cycles. A proxy that fails to load is passed on unchanged and
// its marshaller reports the failure.
func unwrapProxy(v any) any {
	p, ok := v.(proxy.Proxy)
	if !ok || domain.IsNil(v) {
		return v
	}
	target, err := p.ProxyTarget()
	if err != nil || domain.IsNil(target) {
		return v
	}
	return target
}

// identity keys pointer values so a value reached again through its own
// properties is detected.
func identity(v any) (visitKey, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return visitKey{}, false
	}
	return visitKey{t: rv.Type(), p: rv.Pointer()}, true
}

// ElementName returns the element node name used for v.
func ElementName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case domain.SortedMap, *domain.SortedMap:
		return "sortedMap"
	}
	if _, ok := domain.SetMembers(v); ok {
		return "set"
	}
	name := metadata.ClassName(v)
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		switch domain.Indirect(reflect.ValueOf(v)).Kind() {
		case reflect.Slice, reflect.Array:
			return "list"
		case reflect.Map:
			return "map"
		default:
			return "value"
		}
	}
	return domain.LowerFirst(name)
}
