package check

import (
	"fmt"
	"reflect"
)

func isNilPointer(val interface{}) bool {
	v := reflect.ValueOf(val)
	return val == nil || (v.Kind() == reflect.Ptr && v.IsNil())
}

// format renders a value for an error message, following pointers so that a *int prints its
// target rather than an address.
func format(i interface{}) string {
	indirect := i
	for !isNilPointer(indirect) && reflect.ValueOf(indirect).Kind() == reflect.Ptr {
		indirect = reflect.Indirect(reflect.ValueOf(indirect)).Interface()
	}
	if reflect.TypeOf(i) == reflect.TypeOf(indirect) {
		return fmt.Sprintf("%+v", i)
	}
	return fmt.Sprintf("%T(%+v)", i, indirect)
}

// messageFromMsgAndArgs treats msgAndArgs as an optional printf-style format and arguments.
func messageFromMsgAndArgs(msgAndArgs ...interface{}) string {
	switch {
	case len(msgAndArgs) == 1:
		if msg, ok := msgAndArgs[0].(string); ok {
			return msg
		}
		return format(msgAndArgs[0])
	case len(msgAndArgs) > 1:
		msg, ok := msgAndArgs[0].(string)
		if !ok {
			return fmt.Sprint(msgAndArgs...)
		}
		return fmt.Sprintf(msg, msgAndArgs[1:]...)
	default:
		return ""
	}
}
