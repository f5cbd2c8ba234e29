package proxy

import (
	"fmt"

	"github.com/zjrosen/domxml/internal/domain"
)

// BasicResolver unwraps proxies but cannot read their identifiers.
type BasicResolver struct{}

var _ domain.ProxyResolver = BasicResolver{}

// IsProxy reports whether v is a Proxy.
func (BasicResolver) IsProxy(v any) bool {
	_, ok := v.(Proxy)
	return ok
}

// Unwrap returns the target of a proxy, loading it if needed. Other values
// are returned unchanged.
func (BasicResolver) Unwrap(v any) (any, error) {
	p, ok := v.(Proxy)
	if !ok {
		return v, nil
	}
	target, err := p.ProxyTarget()
	if err != nil {
		return nil, fmt.Errorf("unwrap %s proxy: %w", p.TargetClass(), err)
	}
	return target, nil
}

// Resolver is a BasicResolver that can also read proxy identifiers without
// loading the target.
type Resolver struct {
	BasicResolver
}

var (
	_ domain.ProxyResolver      = Resolver{}
	_ domain.IdentifierResolver = Resolver{}
)

// NewResolver returns a resolver with the identifier capability.
func NewResolver() Resolver {
	return Resolver{}
}

// TryGetProxyIdentifier returns the identifier held by v when v is a proxy.
func (Resolver) TryGetProxyIdentifier(v any) (any, bool) {
	p, ok := v.(Proxy)
	if !ok {
		return nil, false
	}
	return p.ProxyIdentifier()
}

// TargetClass returns the target class of v when v is a proxy.
func TargetClass(v any) (string, bool) {
	p, ok := v.(Proxy)
	if !ok {
		return "", false
	}
	return p.TargetClass(), true
}
