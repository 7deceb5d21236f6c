package check

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Validator returns an error if the validation fails and nil otherwise.
type Validator func() error

// Validatable is implemented by anything that has fields that should be validated.
type Validatable interface {
	Validate() []error
}

// PathError is a failed check attributed to the location in the validated value where the
// Validatable that produced it was found. Struct fields are named by their json tag.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("error found at %s: %s", e.Path, e.Err)
}

// Unwrap returns the failed check.
func (e *PathError) Unwrap() error {
	return e.Err
}

// ValidationError collects every failed check of a single Validate call. Each entry is a
// *PathError.
type ValidationError struct {
	Errs []error
}

func (v ValidationError) Error() string {
	errStrings := make([]string, 0, len(v.Errs))
	for _, err := range v.Errs {
		errStrings = append(errStrings, err.Error())
	}
	sort.Strings(errStrings)
	joined := strings.Join(errStrings, "\n\t")
	return fmt.Sprintf("Check Failed! %d errors found:\n\t%s", len(v.Errs), joined)
}

// Validate returns an error if any of the provided validators have failed. The errors of all
// failed validators are combined into a single returned ValidationError.
func Validate(v interface{}) error {
	errs := validate(reflect.ValueOf(v), "root")
	if len(errs) == 0 {
		return nil
	}
	return ValidationError{Errs: errs}
}

// fieldName returns the json name of a struct field, or "" for embedded structs without a tag,
// whose fields are reported as if they belonged to the parent.
func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	name := strings.Split(tag, ",")[0]
	switch {
	case name == "-":
		return field.Name
	case name != "":
		return name
	case field.Anonymous:
		return ""
	default:
		return field.Name
	}
}

func validate(v reflect.Value, path string) []error {
	if !v.IsValid() {
		return nil
	}

	var errs []error
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		errs = append(errs, validate(v.Elem(), path)...)
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			errs = append(errs, validate(v.Index(i), fmt.Sprintf("%s[%d]", path, i))...)
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			errs = append(errs, validate(v.MapIndex(key),
				fmt.Sprintf("%s[%v]", path, key.Interface()))...)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !v.Field(i).CanInterface() {
				continue
			}
			fieldPath := path
			if name := fieldName(v.Type().Field(i)); name != "" {
				fieldPath = fmt.Sprintf("%s.%s", path, name)
			}
			errs = append(errs, validate(v.Field(i), fieldPath)...)
		}
	}

	if v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface {
		vp := reflect.New(v.Type())
		vp.Elem().Set(v)
		if validatable, ok := vp.Interface().(Validatable); ok {
			for _, err := range validatable.Validate() {
				if err != nil {
					errs = append(errs, &PathError{Path: path, Err: err})
				}
			}
		}
	}

	return errs
}
