package source

import (
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/bramp/objectgraph/pkg/errors"
)

// typeNames maps document type names to the Go types decoded values take.
var typeNames = map[string][]reflect.Type{
	"string":   {reflect.TypeFor[string]()},
	"number":   {reflect.TypeFor[float64](), reflect.TypeFor[int64]()},
	"bool":     {reflect.TypeFor[bool]()},
	"object":   {reflect.TypeFor[map[string]any]()},
	"array":    {reflect.TypeFor[[]any](), reflect.TypeFor[[]map[string]any]()},
	"datetime": {reflect.TypeFor[time.Time]()},
}

// TypeNames returns the names accepted by [Types], sorted.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Types resolves document type names such as "string" or "object" to the
// Go types a decoded document uses for them.
func Types(names []string) ([]reflect.Type, error) {
	var out []reflect.Type
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if err := errors.ValidateTypeName(name); err != nil {
			return nil, err
		}
		types, ok := typeNames[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"unknown type %q (want one of %s)", name, strings.Join(TypeNames(), ", "))
		}
		for _, t := range types {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out, nil
}
