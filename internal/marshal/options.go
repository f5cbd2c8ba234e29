package marshal

import "fmt"

// RenderMode selects how association values are written.
type RenderMode int

const (
	// RenderShallow writes associated instances as short references carrying only their id.
	RenderShallow RenderMode = iota
	// RenderFull converts associated instances completely.
	RenderFull
)

// String returns a human-readable representation of the RenderMode.
func (m RenderMode) String() string {
	switch m {
	case RenderShallow:
		return "shallow"
	case RenderFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseRenderMode returns the RenderMode for s. An empty string is shallow.
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "", "shallow":
		return RenderShallow, nil
	case "full":
		return RenderFull, nil
	default:
		return 0, fmt.Errorf("unknown render mode %q (expected shallow or full)", s)
	}
}

// Option configures the DomainMarshaller.
type Option func(*DomainMarshaller)

// WithIncludeVersion writes the version attribute of versioned classes.
func WithIncludeVersion(include bool) Option {
	return func(m *DomainMarshaller) {
		m.includeVersion = include
	}
}

// WithRenderMode sets how associations are rendered.
func WithRenderMode(mode RenderMode) Option {
	return func(m *DomainMarshaller) {
		m.mode = mode
	}
}

// WithInclusion sets the include strategy. nil restores IncludeAll.
func WithInclusion(in Inclusion) Option {
	return func(m *DomainMarshaller) {
		if in == nil {
			in = IncludeAll{}
		}
		m.include = in
	}
}

// WithExclusion sets the exclude strategy. nil restores ExcludeNone.
func WithExclusion(ex Exclusion) Option {
	return func(m *DomainMarshaller) {
		if ex == nil {
			ex = ExcludeNone{}
		}
		m.exclude = ex
	}
}
