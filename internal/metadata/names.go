package metadata

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/zjrosen/domxml/internal/proxy"
)

// proxyMarkers are the class name decorations left by proxy generators.
// Everything from the first marker on is dropped.
var proxyMarkers = []string{"_$$_", "$$", "$HibernateProxy$", "$Proxy"}

// TrimProxySuffix strips proxy class decorations from name, e.g.
// "Book_$$_javassist_12" becomes "Book".
func TrimProxySuffix(name string) string {
	cut := len(name)
	for _, marker := range proxyMarkers {
		if i := strings.Index(name, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	return name[:cut]
}

// ClassName returns the domain class name of v: the target class for
// proxies, otherwise the Go type name with pointers removed.
// Returns "" for nil and unnamed types.
func ClassName(v any) string {
	if class, ok := proxy.TargetClass(v); ok {
		return TrimProxySuffix(class)
	}
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return TypeName(t)
}

// TypeName returns the class name for a Go type, dereferencing pointers.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return TrimProxySuffix(t.Name())
}

// PropertyName converts a Go field name to a property name, lower-casing the
// leading initialism: "ID" -> "id", "ISBN" -> "isbn", "URLPath" -> "urlPath",
// "CreatedAt" -> "createdAt".
func PropertyName(field string) string {
	runes := []rune(field)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return field
	case n == len(runes):
		return strings.ToLower(field)
	case n > 1:
		n-- // the last upper rune starts the next word
	}
	for i := range n {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
