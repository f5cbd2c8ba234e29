// Package domain holds the metadata model the XML marshaller walks over.
//
// A Descriptor describes one persistence-mapped class: its identifier, its
// optional version property and the ordered list of persistent properties.
// Properties that reference other domain classes carry an Association, a
// closed variant over to-one, to-many collection and to-many map shapes with
// an explicit ordering flag. The marshaller branches on that variant and never
// on the runtime container type of a value.
//
// The package also declares the collaborator contracts (MetadataProvider,
// PropertyAccessor, ProxyResolver, Sink) and the single error kind raised
// during conversion, ConversionError.
package domain
