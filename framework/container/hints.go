package container

import (
	"context"
	"fmt"
	"reflect"
)

// Param is one dependency of a constructor or struct: its name and its
// declared type. Type is nil when nothing more precise than any was
// declared, in which case only the name can resolve it.
type Param struct {
	Name string
	Type reflect.Type
}

func (p Param) String() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Type != nil {
		return p.Type.String()
	}
	return "?"
}

var (
	contextType = reflect.TypeFor[context.Context]()
	scopeType   = reflect.TypeFor[*ActivationScope]()
	typeType    = reflect.TypeFor[reflect.Type]()
	errorType   = reflect.TypeFor[error]()
)

// declared returns t, or nil when t is the empty interface.
func declared(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return nil
	}
	return t
}

// funcParams lists the parameters of a constructor. Go keeps no parameter
// names at runtime, so names come from the registration.
func funcParams(fn reflect.Type, names []string) ([]Param, error) {
	if fn.IsVariadic() {
		return nil, fmt.Errorf("variadic constructors are not supported")
	}
	if len(names) > fn.NumIn() {
		return nil, fmt.Errorf("%d parameter names given for %d parameters", len(names), fn.NumIn())
	}
	params := make([]Param, fn.NumIn())
	for i := range params {
		params[i].Type = declared(fn.In(i))
		if i < len(names) {
			params[i].Name = names[i]
		}
	}
	return params, nil
}

// structParams lists the injectable fields of a struct: every exported
// field not tagged di:"-". The name is the di tag when present, else the
// snake_case field name.
func structParams(t reflect.Type) (params []Param, fields []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("di")
		if name == "-" {
			continue
		}
		if name == "" {
			name = paramName(f.Name)
		}
		params = append(params, Param{Name: name, Type: declared(f.Type)})
		fields = append(fields, i)
	}
	return params, fields
}

// resultShape describes what a constructor or factory returns:
// (T), (T, error), (T, func(), error) or (T, func() error, error).
type resultShape struct {
	out        reflect.Type
	releaseIdx int
	errIdx     int
}

func shapeOf(fn reflect.Type) (resultShape, error) {
	s := resultShape{releaseIdx: -1, errIdx: -1}
	switch fn.NumOut() {
	case 1:
	case 2:
		if fn.Out(1) != errorType {
			return s, fmt.Errorf("second result must be error, got %s", fn.Out(1))
		}
		s.errIdx = 1
	case 3:
		if !isReleaseFunc(fn.Out(1)) {
			return s, fmt.Errorf("second result must be func() or func() error, got %s", fn.Out(1))
		}
		if fn.Out(2) != errorType {
			return s, fmt.Errorf("third result must be error, got %s", fn.Out(2))
		}
		s.releaseIdx, s.errIdx = 1, 2
	default:
		return s, fmt.Errorf("must return (T), (T, error) or (T, release, error), got %d results", fn.NumOut())
	}
	s.out = fn.Out(0)
	return s, nil
}

func isReleaseFunc(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 0 {
		return false
	}
	return t.NumOut() == 0 || (t.NumOut() == 1 && t.Out(0) == errorType)
}

// unpack converts call results to (value, release, error).
func (s resultShape) unpack(out []reflect.Value) (any, func() error, error) {
	if s.errIdx >= 0 && !out[s.errIdx].IsNil() {
		return nil, nil, out[s.errIdx].Interface().(error)
	}

	var release func() error
	if s.releaseIdx >= 0 && !out[s.releaseIdx].IsNil() {
		switch fn := out[s.releaseIdx].Interface().(type) {
		case func():
			release = func() error { fn(); return nil }
		case func() error:
			release = fn
		}
	}

	v := out[0]
	if isNilable(v.Kind()) && v.IsNil() {
		return nil, release, nil
	}
	return v.Interface(), release, nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// argValue converts a resolved dependency to a call argument of type t.
func argValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), t)
	}
	return rv, nil
}
