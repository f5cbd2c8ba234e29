// Package marshal writes domain instances as XML.
//
// DomainMarshaller is an xmlconv.ObjectMarshaller for persistence-mapped
// classes. It writes the identifier and version as attributes of the open
// node and each persistent property as a child node. Associations are
// either written as short references carrying only the referenced id
// (RenderShallow) or converted completely (RenderFull).
package marshal

import (
	"io"

	"github.com/zjrosen/domxml/internal/domain"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/metadata"
	"github.com/zjrosen/domxml/internal/xmlconv"
)

// DomainMarshaller converts domain instances. It holds no per-call state and
// is safe for concurrent use when its collaborators are.
type DomainMarshaller struct {
	provider domain.MetadataProvider
	accessor domain.PropertyAccessor
	resolver domain.ProxyResolver

	includeVersion bool
	mode           RenderMode
	include        Inclusion
	exclude        Exclusion
}

var _ xmlconv.ObjectMarshaller = (*DomainMarshaller)(nil)

// New creates a DomainMarshaller. By default the version is omitted,
// associations are shallow and every property is included.
func New(provider domain.MetadataProvider, accessor domain.PropertyAccessor, resolver domain.ProxyResolver, opts ...Option) *DomainMarshaller {
	m := &DomainMarshaller{
		provider: provider,
		accessor: accessor,
		resolver: resolver,
		mode:     RenderShallow,
		include:  IncludeAll{},
		exclude:  ExcludeNone{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mode returns the association render mode.
func (m *DomainMarshaller) Mode() RenderMode {
	return m.mode
}

// Supports reports whether v is an instance of a registered domain class.
func (m *DomainMarshaller) Supports(v any) bool {
	if domain.IsNil(v) {
		return false
	}
	class := metadata.ClassName(v)
	return class != "" && m.provider.IsDomainClass(class)
}

// Marshal writes v into the open node of sink.
func (m *DomainMarshaller) Marshal(v any, sink domain.Sink) error {
	class := metadata.ClassName(v)
	d, err := m.provider.Describe(class)
	if err != nil {
		return domain.NewConversionError(class, "", err)
	}
	instance, err := m.resolver.Unwrap(v)
	if err != nil {
		return domain.NewConversionError(d.Name, "", err)
	}
	log.Debug(log.CatMarshal, "Marshalling domain instance", "class", d.Name, "mode", m.mode)

	if m.shouldInclude(d, d.Identifier.Name) {
		id, err := m.accessor.Get(instance, d.Identifier.Name)
		if err != nil {
			return domain.NewConversionError(d.Name, d.Identifier.Name, err)
		}
		if !domain.IsNil(id) {
			if err := sink.Attribute("id", domain.String(id)); err != nil {
				return domain.NewConversionError(d.Name, d.Identifier.Name, err)
			}
		}
	}

	if m.includeVersion && d.Version != nil && m.shouldInclude(d, domain.VersionProperty) {
		version, err := m.accessor.Get(instance, d.Version.Name)
		if err != nil {
			return domain.NewConversionError(d.Name, d.Version.Name, err)
		}
		if err := sink.Attribute("version", domain.String(version)); err != nil {
			return domain.NewConversionError(d.Name, d.Version.Name, err)
		}
	}

	for _, p := range d.Properties {
		if !m.shouldInclude(d, p.Name) {
			continue
		}
		if err := sink.StartNode(p.Name); err != nil {
			return domain.NewConversionError(d.Name, p.Name, err)
		}
		if err := m.marshalProperty(instance, p, sink); err != nil {
			return domain.NewConversionError(d.Name, p.Name, err)
		}
		if err := sink.End(); err != nil {
			return domain.NewConversionError(d.Name, p.Name, err)
		}
	}
	return nil
}

// Render writes root as a complete XML document with m registered on the converter.
func (m *DomainMarshaller) Render(w io.Writer, root any, opts xmlconv.Options) error {
	return xmlconv.Render(w, root, opts, m)
}

func (m *DomainMarshaller) shouldInclude(d *domain.Descriptor, property string) bool {
	return m.include.Includes(d, property) && !m.exclude.Excludes(d, property)
}

func (m *DomainMarshaller) marshalProperty(instance any, p *domain.Property, sink domain.Sink) error {
	value, err := m.accessor.Get(instance, p.Name)
	if err != nil {
		return err
	}
	if !p.IsAssociation() {
		return sink.ConvertAnother(value)
	}
	if domain.IsNil(value) {
		return nil
	}
	if m.mode == RenderFull {
		return m.renderFull(p.Association, value, sink)
	}
	return m.renderShallow(p, value, sink)
}

func (m *DomainMarshaller) renderFull(a *domain.Association, value any, sink domain.Sink) error {
	target, err := m.resolver.Unwrap(value)
	if err != nil {
		return err
	}
	normalized, err := normalize(a, target)
	if err != nil {
		return err
	}
	return sink.ConvertAnother(normalized)
}

func (m *DomainMarshaller) renderShallow(p *domain.Property, value any, sink domain.Sink) error {
	var referenced *domain.Descriptor
	if ref := p.Referenced(); ref != "" && m.provider.IsDomainClass(ref) {
		d, err := m.provider.Describe(ref)
		if err != nil {
			return err
		}
		referenced = d
	}
	if referenced == nil || p.IsEmbedded() || p.Enum {
		return sink.ConvertAnother(value)
	}

	if p.Association.Kind == domain.KindToOne {
		return m.shortReference(value, referenced, sink)
	}

	// Lazily loaded collections are proxies too; their members are not.
	value, err := m.resolver.Unwrap(value)
	if err != nil {
		return err
	}

	switch p.Association.Kind {

	case domain.KindToManyCollection:
		elems, ordered, err := elements(value)
		if err != nil {
			return err
		}
		if !ordered || p.Association.Ordering == domain.OrderSorted {
			sortElements(elems)
		}
		for _, el := range elems {
			if err := sink.StartNode(sink.ElementName(el)); err != nil {
				return err
			}
			if err := m.shortReference(el, referenced, sink); err != nil {
				return err
			}
			if err := sink.End(); err != nil {
				return err
			}
		}
		return nil

	case domain.KindToManyMap:
		es, ordered, err := entries(value)
		if err != nil {
			return err
		}
		if !ordered {
			sortEntries(es)
		}
		for _, e := range es {
			if err := sink.StartNode("entry"); err != nil {
				return err
			}
			if err := sink.Attribute("key", domain.String(e.Key)); err != nil {
				return err
			}
			if err := m.shortReference(e.Value, referenced, sink); err != nil {
				return err
			}
			if err := sink.End(); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// shortReference writes the id attribute of a referenced instance. A proxy's
// identifier is used when the resolver can supply it, so the proxy stays unloaded.
func (m *DomainMarshaller) shortReference(v any, referenced *domain.Descriptor, sink domain.Sink) error {
	if ir, ok := m.resolver.(domain.IdentifierResolver); ok {
		if id, ok := ir.TryGetProxyIdentifier(v); ok {
			return sink.Attribute("id", domain.String(id))
		}
	}
	target, err := m.resolver.Unwrap(v)
	if err != nil {
		return err
	}
	var id any
	if !domain.IsNil(target) {
		id, err = m.accessor.Get(target, referenced.Identifier.Name)
		if err != nil {
			return err
		}
	}
	return sink.Attribute("id", domain.String(id))
}
