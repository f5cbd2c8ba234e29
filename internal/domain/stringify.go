package domain

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// String returns the string form of a value as written into attributes:
// nil is "null", times are RFC 3339, text marshalers and Stringers use their
// own representation. Pointers are written as the value they point to.
func String(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "null"
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
			return String(rv.Elem().Interface())
		}
		return fmt.Sprint(v)
	}
}
