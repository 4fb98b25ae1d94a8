package seqlock

import "reflect"

// isFlat reports whether t is safe to duplicate by raw byte copy: it
// must not contain pointers, references to external resources, or a
// self-referential layout anywhere in its structure.
func isFlat(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isFlat(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isFlat(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		// Pointers, strings, slices, maps, chans, funcs, interfaces,
		// unsafe.Pointer: a byte copy would duplicate a reference.
		return false
	}
}
