package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	stdpath "path"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/domxml/internal/domain"
)

// ErrDuplicateClass is returned when a class is declared more than once.
var ErrDuplicateClass = errors.New("duplicate domain class")

// MappingFile is the root structure of a mapping YAML file.
type MappingFile struct {
	Classes []ClassDef `yaml:"classes"`
}

// ClassDef declares one domain class.
type ClassDef struct {
	Name       string        `yaml:"name"`
	ID         string        `yaml:"id"`      // identifier property name, default "id"
	Version    string        `yaml:"version"` // version property name, empty when unversioned
	Properties []PropertyDef `yaml:"properties"`
}

// PropertyDef declares one persistent property.
type PropertyDef struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Association string `yaml:"association"` // cardinality, empty for plain properties
	Ref         string `yaml:"ref"`         // referenced class
	Ordering    string `yaml:"ordering"`    // sequence (default), unordered, sorted
	Map         bool   `yaml:"map"`         // to-many keyed by map key
	Enum        bool   `yaml:"enum"`
}

// ParseMappings parses the YAML content of a single mapping file.
func ParseMappings(content []byte) ([]*domain.Descriptor, error) {
	var file MappingFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, err
	}

	out := make([]*domain.Descriptor, 0, len(file.Classes))
	for _, def := range file.Classes {
		d, err := buildDescriptor(def)
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", def.Name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func buildDescriptor(def ClassDef) (*domain.Descriptor, error) {
	idName := def.ID
	if idName == "" {
		idName = "id"
	}
	d := &domain.Descriptor{
		Name:       def.Name,
		Identifier: &domain.Property{Name: idName},
	}
	if def.Version != "" {
		d.Version = &domain.Property{Name: def.Version}
	}

	for _, pd := range def.Properties {
		p := &domain.Property{Name: pd.Name, Type: pd.Type, Enum: pd.Enum}
		if pd.Association != "" {
			c, err := domain.ParseCardinality(pd.Association)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", pd.Name, err)
			}
			ordering, err := domain.ParseOrdering(pd.Ordering)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", pd.Name, err)
			}
			p.Association = domain.NewAssociation(c, pd.Ref, ordering, pd.Map)
			if p.Type == "" {
				p.Type = pd.Ref
			}
		}
		d.Properties = append(d.Properties, p)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadMappings loads every *.yaml / *.yml file under dir in fsys. Classes
// must be unique across files.
func LoadMappings(fsys fs.FS, dir string) ([]*domain.Descriptor, error) {
	var all []*domain.Descriptor
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsMappingFile(path) {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		descs, err := ParseMappings(content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for _, desc := range descs {
			if prev, dup := seen[desc.Name]; dup {
				return fmt.Errorf("%s in %s and %s: %w", desc.Name, prev, path, ErrDuplicateClass)
			}
			seen[desc.Name] = path
		}
		all = append(all, descs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan mappings: %w", err)
	}
	return all, nil
}

// IsMappingFile reports whether path names a YAML mapping file.
func IsMappingFile(path string) bool {
	return slices.Contains([]string{".yaml", ".yml"}, stdpath.Ext(path))
}
