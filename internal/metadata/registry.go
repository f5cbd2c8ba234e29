// Package metadata resolves Go values and class names to domain descriptors.
//
// Descriptors come from two sources: Go struct types registered with
// RegisterType, inspected lazily through their `domain` struct tags, and
// explicit descriptors registered directly or loaded from YAML mapping files.
// Explicit descriptors take precedence over inspected ones for the same class.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/zjrosen/domxml/internal/cachemanager"
	"github.com/zjrosen/domxml/internal/domain"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/pubsub"
)

// ErrUnknownClass is returned by Describe for unregistered classes.
var ErrUnknownClass = errors.New("not a domain class")

// ErrUnknownReference is returned when an association references an unregistered class.
var ErrUnknownReference = errors.New("association references unknown class")

// Source indicates where a descriptor was registered from.
type Source int

const (
	SourceType Source = iota
	SourceExplicit
	SourceMapping
)

func (s Source) String() string {
	switch s {
	case SourceType:
		return "struct"
	case SourceExplicit:
		return "explicit"
	case SourceMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Options configure a Registry.
type Options struct {
	// CacheDescriptors caches descriptors built from struct types.
	CacheDescriptors bool
	// CacheTTL is the lifetime of cached descriptors; 0 keeps them until invalidated.
	CacheTTL time.Duration
}

type entry struct {
	desc   *domain.Descriptor
	source Source
}

// Registry is a thread-safe domain.MetadataProvider.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	types   map[string]reflect.Type

	ttl      time.Duration
	inspects *cachemanager.ReadThroughCache[string, *domain.Descriptor, reflect.Type]
	broker   *pubsub.Broker[[]string]
}

var _ domain.MetadataProvider = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cachemanager.NoExpiration
	}
	cache := cachemanager.NewInMemoryCacheManager[string, *domain.Descriptor](
		"descriptors", ttl, cachemanager.DefaultCleanupInterval)

	return &Registry{
		entries: make(map[string]entry),
		types:   make(map[string]reflect.Type),
		ttl:     ttl,
		inspects: cachemanager.NewReadThroughCache[string, *domain.Descriptor, reflect.Type](cache,
			func(_ context.Context, t reflect.Type) (*domain.Descriptor, error) {
				log.Debug(log.CatMeta, "Inspecting domain type", "type", t.String())
				return Inspect(t)
			},
			!opts.CacheDescriptors,
		),
		broker: pubsub.NewBroker[[]string](),
	}
}

// RegisterType registers the struct type of sample as a domain class. The
// descriptor is validated immediately.
func (r *Registry) RegisterType(sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return fmt.Errorf("register nil: %w", ErrNotStruct)
	}
	d, err := Inspect(t)
	if err != nil {
		return err
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mu.Lock()
	r.types[d.Name] = t
	r.mu.Unlock()

	_ = r.inspects.Invalidate(context.Background(), d.Name)
	log.Debug(log.CatMeta, "Registered domain type", "class", d.Name, "properties", len(d.Properties))
	r.broker.Publish(pubsub.CreatedEvent, []string{d.Name})
	return nil
}

// Register adds an explicit descriptor, replacing any previous one of the same name.
func (r *Registry) Register(d *domain.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[d.Name] = entry{desc: d, source: SourceExplicit}
	r.mu.Unlock()

	log.Debug(log.CatMeta, "Registered descriptor", "class", d.Name)
	r.broker.Publish(pubsub.CreatedEvent, []string{d.Name})
	return nil
}

// IsDomainClass reports whether name, proxy decorations removed, is registered.
func (r *Registry) IsDomainClass(name string) bool {
	name = TrimProxySuffix(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.entries[name]; ok {
		return true
	}
	_, ok := r.types[name]
	return ok
}

// Describe returns the descriptor of the named class.
func (r *Registry) Describe(name string) (*domain.Descriptor, error) {
	name = TrimProxySuffix(name)

	r.mu.RLock()
	e, ok := r.entries[name]
	t, typed := r.types[name]
	r.mu.RUnlock()

	if ok {
		return e.desc, nil
	}
	if !typed {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownClass)
	}
	return r.inspects.Get(context.Background(), name, t, r.ttl)
}

// DescribeValue returns the descriptor for the class of v.
func (r *Registry) DescribeValue(v any) (*domain.Descriptor, error) {
	return r.Describe(ClassName(v))
}

// Source returns where the named class was registered from.
func (r *Registry) Source(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e.source, true
	}
	if _, ok := r.types[name]; ok {
		return SourceType, true
	}
	return 0, false
}

// Classes returns the registered class names in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make(map[string]struct{}, len(r.entries)+len(r.types))
	for n := range r.entries {
		names[n] = struct{}{}
	}
	for n := range r.types {
		names[n] = struct{}{}
	}
	return slices.Sorted(maps.Keys(names))
}

// LoadMappings loads mapping files from dir in fsys, replacing every
// descriptor previously loaded from mappings.
func (r *Registry) LoadMappings(fsys fs.FS, dir string) error {
	descs, err := LoadMappings(fsys, dir)
	if err != nil {
		return err
	}
	return r.ReplaceMappings(descs)
}

// ReplaceMappings swaps the mapping-sourced descriptors for descs after
// checking that every association references a known class.
func (r *Registry) ReplaceMappings(descs []*domain.Descriptor) error {
	r.mu.Lock()
	next := make(map[string]entry, len(r.entries)+len(descs))
	for name, e := range r.entries {
		if e.source != SourceMapping {
			next[name] = e
		}
	}
	for _, d := range descs {
		next[d.Name] = entry{desc: d, source: SourceMapping}
	}
	for _, d := range descs {
		for _, p := range d.Associations() {
			ref := p.Referenced()
			if ref == "" {
				continue
			}
			if _, ok := next[ref]; ok {
				continue
			}
			if _, ok := r.types[ref]; ok {
				continue
			}
			r.mu.Unlock()
			return fmt.Errorf("%s.%s -> %s: %w", d.Name, p.Name, ref, ErrUnknownReference)
		}
	}
	r.entries = next
	r.mu.Unlock()

	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	slices.Sort(names)
	log.Info(log.CatMeta, "Loaded domain mappings", "classes", len(names))
	r.broker.Publish(pubsub.ReloadedEvent, names)
	return nil
}

// Subscribe returns registry change events. The payload holds the affected class names.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[[]string] {
	return r.broker.Subscribe(ctx)
}

// Close releases subscribers.
func (r *Registry) Close() {
	r.broker.Close()
}
