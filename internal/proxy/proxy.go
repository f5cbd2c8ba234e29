// Package proxy provides lazy-loading placeholders for associated domain
// instances and the resolver the marshaller uses to see through them.
package proxy

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zjrosen/domxml/internal/log"
)

// ErrNotLoaded is returned when a proxy has no loader to materialize its target.
var ErrNotLoaded = errors.New("proxy target not loaded")

// Proxy is a placeholder for a domain instance that may not be loaded yet.
type Proxy interface {
	// ProxyTarget returns the target instance, loading it on first access.
	ProxyTarget() (any, error)

	// ProxyIdentifier returns the identifier of the target without loading it.
	ProxyIdentifier() (any, bool)

	// Initialized reports whether the target has been loaded.
	Initialized() bool

	// TargetClass returns the domain class name of the target.
	TargetClass() string
}

// Loader loads the target of a proxy by its identifier.
type Loader[T any] func(id any) (T, error)

// Lazy is a Proxy for a target of type T identified by id.
type Lazy[T any] struct {
	class  string
	id     any
	loader Loader[T]

	once   sync.Once
	target T
	err    error
	loads  atomic.Int32
	ready  atomic.Bool
}

// NewLazy creates a proxy for the instance of class identified by id.
func NewLazy[T any](class string, id any, loader Loader[T]) *Lazy[T] {
	return &Lazy[T]{class: class, id: id, loader: loader}
}

// Loaded creates an already-initialized proxy around target.
func Loaded[T any](class string, id any, target T) *Lazy[T] {
	l := &Lazy[T]{class: class, id: id, target: target}
	l.once.Do(func() {})
	l.ready.Store(true)
	return l
}

// Get returns the typed target, loading it on first access.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if l.loader == nil {
			l.err = fmt.Errorf("%s#%v: %w", l.class, l.id, ErrNotLoaded)
			return
		}
		l.loads.Add(1)
		log.Debug(log.CatProxy, "Loading proxy target", "class", l.class, "id", l.id)
		l.target, l.err = l.loader(l.id)
		if l.err != nil {
			log.ErrorErr(log.CatProxy, "Proxy load failed", l.err, "class", l.class, "id", l.id)
			return
		}
		l.ready.Store(true)
	})
	return l.target, l.err
}

// ProxyTarget implements Proxy.
func (l *Lazy[T]) ProxyTarget() (any, error) {
	t, err := l.Get()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ProxyIdentifier implements Proxy.
func (l *Lazy[T]) ProxyIdentifier() (any, bool) {
	if l == nil || l.id == nil {
		return nil, false
	}
	return l.id, true
}

// Initialized implements Proxy.
func (l *Lazy[T]) Initialized() bool {
	return l.ready.Load()
}

// TargetClass implements Proxy.
func (l *Lazy[T]) TargetClass() string {
	return l.class
}

// LoadCount returns how many times the loader ran (0 or 1).
func (l *Lazy[T]) LoadCount() int {
	return int(l.loads.Load())
}

func (l *Lazy[T]) String() string {
	return fmt.Sprintf("%s#%v(proxy)", l.class, l.id)
}
