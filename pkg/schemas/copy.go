package schemas

import (
	"fmt"
	"reflect"
)

// Copy returns a deep copy of a config object. It works on the plain data types used by config
// records and by decoded JSON: structs, pointers, maps, slices, interfaces and scalars.
func Copy[T any](src T) T {
	v := reflect.ValueOf(&src).Elem()
	out, _ := cpy(v).Interface().(T)
	return out
}

func cpy(v reflect.Value) reflect.Value {
	var out reflect.Value

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out = reflect.New(v.Elem().Type())
		out.Elem().Set(cpy(v.Elem()))

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out = reflect.New(v.Type()).Elem()
		out.Set(cpy(v.Elem()))
		return out

	case reflect.Struct:
		out = reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(cpy(v.Field(i)))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out = reflect.MakeMapWithSize(v.Type(), v.Len())
		for _, key := range v.MapKeys() {
			out.SetMapIndex(key, cpy(v.MapIndex(key)))
		}

	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out = reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cpy(v.Index(i)))
		}

	case reflect.Array,
		reflect.Chan,
		reflect.Func,
		reflect.UnsafePointer:
		panic(fmt.Sprintf("unable to copy %v of kind %v", v.Type(), v.Kind()))

	default:
		return v
	}

	return out
}
