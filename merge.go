package stageflow

import "reflect"

// MergeFunc combines the payloads produced by the branches of a parallel
// feature into one. It receives the pre-parallel snapshot and the branch
// results in branch registration order, and must return a new payload.
//
// Every parallel feature requires an explicit merge function: the engine
// cannot know which fields a branch intended to change.
type MergeFunc[P any] func(original P, branches []P) P

// ZeroFieldMerge returns a MergeFunc for struct payloads that merges branch
// results field by field: an exported field takes the branch value when it
// differs from the field type's zero value, else keeps the original. Later
// branches win when two branches set the same field.
//
// This heuristic cannot distinguish "untouched" from "deliberately reset to
// zero"; branches that need to zero a field should use a hand-written
// MergeFunc instead. For non-struct payloads the last branch result wins.
func ZeroFieldMerge[P any]() MergeFunc[P] {
	return func(original P, branches []P) P {
		out := reflect.New(reflect.TypeOf((*P)(nil)).Elem()).Elem()
		out.Set(reflect.ValueOf(&original).Elem())

		if out.Kind() != reflect.Struct {
			if len(branches) == 0 {
				return original
			}
			return branches[len(branches)-1]
		}

		for _, branch := range branches {
			bv := reflect.ValueOf(&branch).Elem()
			for i := range bv.NumField() {
				field := bv.Field(i)
				if !out.Field(i).CanSet() {
					continue // unexported
				}
				if field.IsZero() {
					continue
				}
				out.Field(i).Set(field)
			}
		}

		return out.Interface().(P)
	}
}
