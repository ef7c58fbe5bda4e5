package mustache

import (
	"context"
	"fmt"
	"iter"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind classifies a resolved view value for section rendering.
type Kind int

// Value kinds
const (
	KindNullish Kind = iota
	KindScalar
	KindSequence
	KindIterable
	KindMapping
	KindLambda
)

// Kind names for debugging
const (
	KindNameNullish  = "nullish"
	KindNameScalar   = "scalar"
	KindNameSequence = "sequence"
	KindNameIterable = "iterable"
	KindNameMapping  = "mapping"
	KindNameLambda   = "lambda"
	KindNameUnknown  = "unknown"
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindNullish:
		return KindNameNullish
	case KindScalar:
		return KindNameScalar
	case KindSequence:
		return KindNameSequence
	case KindIterable:
		return KindNameIterable
	case KindMapping:
		return KindNameMapping
	case KindLambda:
		return KindNameLambda
	default:
		return KindNameUnknown
	}
}

// RenderFunc renders a template string against the context a lambda was
// invoked in.
type RenderFunc func(template string) (string, error)

// Lambda is a section value that takes over rendering of its block. It receives
// the view the section was found in, the raw unrendered block text and a
// callback rendering any template against the current context. The result,
// which may be Deferred, is written unescaped; nil writes nothing.
type Lambda func(view any, text string, render RenderFunc) (any, error)

// Iterable is a lazily produced sequence of section items.
type Iterable interface {
	// Each calls fn for every item in order until fn returns an error.
	Each(ctx context.Context, fn func(item any) error) error
}

var byteSliceType = reflect.TypeOf([]byte(nil))

// Classify returns the kind of a resolved value. Deferred values must be
// awaited before classification.
func Classify(value any) Kind {
	if isNilRef(value) {
		return KindNullish
	}
	switch value.(type) {
	case nil:
		return KindNullish
	case Lambda, func(any, string, RenderFunc) (any, error),
		func(string, RenderFunc) (any, error), func(string) string:
		return KindLambda
	case Iterable, iter.Seq[any], func(func(any) bool):
		return KindIterable
	case string, bool, []byte:
		return KindScalar
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() == reflect.Func {
			return KindNullish
		}
		return Classify(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return KindNullish
		}
		return KindMapping
	case reflect.Struct:
		return KindMapping
	case reflect.Slice:
		if rv.Type() == byteSliceType {
			return KindScalar
		}
		return KindSequence
	case reflect.Array:
		return KindSequence
	case reflect.Chan:
		if rv.IsNil() || rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return KindNullish
		}
		return KindIterable
	case reflect.Func, reflect.Interface, reflect.Invalid:
		return KindNullish
	default:
		return KindScalar
	}
}

// isFalsy reports whether a scalar counts as false: false, numeric zero, NaN
// and the empty string.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case bool:
		return !v
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	}

	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() == 0
	}
	return false
}

func isFunc(value any) bool {
	return value != nil && reflect.ValueOf(value).Kind() == reflect.Func
}

// isNilRef reports whether value is a typed nil func, channel or pointer.
func isNilRef(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

// isEmptySequence reports whether value is a sequence with no elements.
func isEmptySequence(value any) bool {
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// eachElement calls fn for every element of a sequence.
func eachElement(value any, fn func(item any) error) error {
	if items, ok := value.([]any); ok {
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.Indirect(reflect.ValueOf(value))
	for i := 0; i < rv.Len(); i++ {
		if err := fn(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// eachItem calls fn for every item of an iterable, stopping early when ctx is
// done.
func eachItem(ctx context.Context, value any, fn func(item any) error) error {
	switch v := value.(type) {
	case Iterable:
		return v.Each(ctx, fn)
	case iter.Seq[any]:
		return eachSeq(ctx, v, fn)
	case func(func(any) bool):
		return eachSeq(ctx, v, fn)
	}

	rv := reflect.Indirect(reflect.ValueOf(value))
	if rv.Kind() != reflect.Chan {
		return nil
	}
	cases := []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: rv},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	}
	for {
		chosen, item, ok := reflect.Select(cases)
		if chosen == 1 {
			return ctx.Err()
		}
		if !ok {
			return nil
		}
		if err := fn(item.Interface()); err != nil {
			return err
		}
	}
}

func eachSeq(ctx context.Context, seq iter.Seq[any], fn func(item any) error) error {
	if seq == nil {
		return nil
	}
	for item := range seq {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

// invokeComputed calls a computed property once, passing holder to the shapes
// that take a view. ok is false when value is not a computed property.
func invokeComputed(value, holder any) (result any, ok bool, err error) {
	if isNilRef(value) {
		return nil, false, nil
	}
	switch fn := value.(type) {
	case func() any:
		return fn(), true, nil
	case func() (any, error):
		result, err = fn()
		return result, true, err
	case func(any) any:
		return fn(holder), true, nil
	case func(any) (any, error):
		result, err = fn(holder)
		return result, true, err
	}
	return value, false, nil
}

// property resolves one path segment on value. found is false when value has
// no such key, field or method.
func property(value any, name string) (result any, found bool, err error) {
	if m, ok := value.(map[string]any); ok {
		result, found = m[name]
		return result, found, nil
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, false, nil
	}

	target := reflect.Indirect(rv)
	switch target.Kind() {
	case reflect.Map:
		keyType := target.Type().Key()
		if keyType.Kind() == reflect.String {
			mv := target.MapIndex(reflect.ValueOf(name).Convert(keyType))
			if mv.IsValid() {
				return mv.Interface(), true, nil
			}
		}
	case reflect.Struct:
		if fv, ok := structField(target, name); ok {
			return fv.Interface(), true, nil
		}
	case reflect.Slice, reflect.Array:
		if idx, convErr := strconv.Atoi(name); convErr == nil && idx >= 0 && idx < target.Len() {
			return target.Index(idx).Interface(), true, nil
		}
	}

	return callMethod(rv, name)
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	typ := rv.Type()
	sf, ok := typ.FieldByName(name)
	if !ok || !sf.IsExported() {
		sf, ok = typ.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
	}
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}
	fv, err := rv.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, false
	}
	return fv, true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callMethod invokes an exported zero-argument method returning T or (T, error).
func callMethod(rv reflect.Value, name string) (any, bool, error) {
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false, nil
	}
	method := rv.MethodByName(name)
	if !method.IsValid() {
		return nil, false, nil
	}
	mt := method.Type()
	if mt.NumIn() != 0 {
		return nil, false, nil
	}
	switch {
	case mt.NumOut() == 1:
		return method.Call(nil)[0].Interface(), true, nil
	case mt.NumOut() == 2 && mt.Out(1) == errorType:
		out := method.Call(nil)
		if errVal := out[1]; !errVal.IsNil() {
			return nil, true, errVal.Interface().(error)
		}
		return out[0].Interface(), true, nil
	}
	return nil, false, nil
}

// formatValue converts an interpolated value to text.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if !rv.IsNil() {
			return formatValue(rv.Elem().Interface())
		}
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
