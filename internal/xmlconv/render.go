package xmlconv

import (
	"encoding/xml"
	"io"
)

// Render writes root as a complete XML document to w. The root element is
// named by ElementName; extra marshallers take precedence over the defaults.
func Render(w io.Writer, root any, opts Options, extra ...ObjectMarshaller) error {
	c := NewConverter(w, opts)
	for _, m := range extra {
		c.Register(m)
	}

	if opts.Header {
		decl := xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)}
		if err := c.enc.EncodeToken(decl); err != nil {
			return err
		}
	}
	if err := c.StartNode(ElementName(root)); err != nil {
		return err
	}
	if err := c.ConvertAnother(root); err != nil {
		return err
	}
	if err := c.End(); err != nil {
		return err
	}
	return c.Flush()
}
