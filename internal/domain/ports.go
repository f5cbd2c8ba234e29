package domain

// MetadataProvider resolves class names to domain descriptors.
type MetadataProvider interface {
	// IsDomainClass reports whether name is a registered domain class.
	IsDomainClass(name string) bool

	// Describe returns the descriptor for name.
	Describe(name string) (*Descriptor, error)
}

// PropertyAccessor reads named properties off arbitrary instances.
type PropertyAccessor interface {
	// Get returns the value of property on instance. It fails when the
	// property is absent or unreadable.
	Get(instance any, property string) (any, error)
}

// ProxyResolver unwraps lazy-loading proxies.
type ProxyResolver interface {
	// IsProxy reports whether v is a proxy.
	IsProxy(v any) bool

	// Unwrap returns the concrete value behind v, loading it when needed.
	// Non-proxy values are returned unchanged.
	Unwrap(v any) (any, error)
}

// IdentifierResolver is the optional proxy capability of reading a proxy's
// identifier without loading its target.
type IdentifierResolver interface {
	// TryGetProxyIdentifier returns the identifier held by the proxy v.
	// ok is false when v is not a proxy or holds no identifier.
	TryGetProxyIdentifier(v any) (id any, ok bool)
}

// Sink receives the XML structure produced by marshallers.
type Sink interface {
	// Attribute sets an attribute on the currently open node.
	Attribute(name, value string) error

	// StartNode opens a child node of the currently open node.
	StartNode(name string) error

	// End closes the currently open node.
	End() error

	// ConvertAnother converts v into the currently open node using whichever
	// marshaller supports it.
	ConvertAnother(v any) error

	// ElementName returns the node name used for v as a collection element.
	ElementName(v any) string
}
