package container

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Key addresses a service: either a Go type or a plain name.
//
// Keys are comparable and are used directly as map keys. Two keys are equal
// when they carry the same type or the same name.
//
//	container.TypeKey[*CatsController]()  // by type
//	container.Name("config")              // by name
type Key struct {
	typ  reflect.Type
	name string
}

// KeyOf returns the key for t.
func KeyOf(t reflect.Type) Key {
	return Key{typ: t}
}

// TypeKey returns the key for the type parameter T. Interface types work
// as-is:
//
//	container.TypeKey[CatsRepository]()
func TypeKey[T any]() Key {
	return Key{typ: reflect.TypeFor[T]()}
}

// Name returns a name key.
func Name(name string) Key {
	return Key{name: name}
}

// Type returns the key's type, or nil for name keys.
func (k Key) Type() reflect.Type { return k.typ }

// IsName reports whether k is a name key.
func (k Key) IsName() bool { return k.typ == nil && k.name != "" }

// IsZero reports whether k addresses nothing.
func (k Key) IsZero() bool { return k.typ == nil && k.name == "" }

func (k Key) String() string {
	if k.typ != nil {
		return k.typ.String()
	}
	if k.name != "" {
		return k.name
	}
	return "<none>"
}

// MarshalText encodes the key as its String form.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// shortName returns the unqualified name a key is known by, and whether that
// name is usable as an alias. Pointer types use their element's name.
// Unnamed and generic types have no usable short name.
func shortName(k Key) (string, bool) {
	if k.typ == nil {
		return k.name, k.name != "" && !strings.Contains(k.name, ".")
	}
	t := k.typ
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" || strings.ContainsAny(name, ".[/ ") {
		return "", false
	}
	return name, true
}

var (
	firstCapRE = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	allCapRE   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// paramName converts a type name to the snake_case form a parameter holding
// it would usually have. A leading "I" interface marker is folded into the
// first word: ICatsRepository becomes icats_repository.
func paramName(name string) string {
	s := firstCapRE.ReplaceAllString(name, "${1}_${2}")
	s = strings.ToLower(allCapRE.ReplaceAllString(s, "${1}_${2}"))
	if strings.HasPrefix(s, "i_") {
		return "i" + s[2:]
	}
	return s
}

// Lifetime is the caching discipline applied to a service.
type Lifetime uint8

const (
	// Transient creates a new instance on every resolve.
	Transient Lifetime = iota
	// Scoped creates one instance per ActivationScope.
	Scoped
	// Singleton creates one instance per Provider.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", uint8(l))
	}
}

// MarshalText encodes the lifetime as its String form.
func (l Lifetime) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// ParseLifetime parses the String form of a Lifetime.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	}
	return 0, fmt.Errorf("container: unknown lifetime %q", s)
}
