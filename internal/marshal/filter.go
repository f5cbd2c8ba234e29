package marshal

import (
	"slices"
	"strings"

	"github.com/zjrosen/domxml/internal/domain"
)

// AnyClass is the class key of IncludeOnly and ExcludeNames entries that
// apply to every class.
const AnyClass = "*"

// Inclusion decides whether a property is a candidate for output. The
// identifier is checked under its own property name and the version under
// domain.VersionProperty.
type Inclusion interface {
	Includes(d *domain.Descriptor, property string) bool
}

// Exclusion removes properties accepted by the Inclusion.
type Exclusion interface {
	Excludes(d *domain.Descriptor, property string) bool
}

// IncludeAll includes every property.
type IncludeAll struct{}

func (IncludeAll) Includes(*domain.Descriptor, string) bool { return true }

// ExcludeNone excludes nothing.
type ExcludeNone struct{}

func (ExcludeNone) Excludes(*domain.Descriptor, string) bool { return false }

// classEntry looks up the entry for class, ignoring case. Config loaders
// lower-case map keys.
func classEntry(m map[string][]string, class string) ([]string, bool) {
	if names, ok := m[class]; ok {
		return names, true
	}
	for k, names := range m {
		if strings.EqualFold(k, class) {
			return names, true
		}
	}
	return nil, false
}

// IncludeOnly restricts classes to the listed properties. Classes without an
// entry (and no AnyClass entry) include everything.
type IncludeOnly map[string][]string

func (f IncludeOnly) Includes(d *domain.Descriptor, property string) bool {
	names, ok := classEntry(f, d.Name)
	wild, wildOK := f[AnyClass]
	if !ok && !wildOK {
		return true
	}
	return slices.Contains(names, property) || slices.Contains(wild, property)
}

// ExcludeNames drops the listed properties per class.
type ExcludeNames map[string][]string

func (f ExcludeNames) Excludes(d *domain.Descriptor, property string) bool {
	names, _ := classEntry(f, d.Name)
	return slices.Contains(names, property) || slices.Contains(f[AnyClass], property)
}

// IncludeFunc adapts a function to Inclusion.
type IncludeFunc func(d *domain.Descriptor, property string) bool

func (f IncludeFunc) Includes(d *domain.Descriptor, property string) bool { return f(d, property) }

// ExcludeFunc adapts a function to Exclusion.
type ExcludeFunc func(d *domain.Descriptor, property string) bool

func (f ExcludeFunc) Excludes(d *domain.Descriptor, property string) bool { return f(d, property) }
