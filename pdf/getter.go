package pdf

import (
	"errors"
	"fmt"
)

// Getter is the opaque handle to a parsed PDF file that the rendering core
// consumes. The file parser (object graph, cross-reference table, stream
// decompression) lives entirely on the other side of this interface.
type Getter interface {
	// Get reads an indirectly-referenced object from the file.
	Get(ref Reference) (Object, error)

	// Options reports interpreter error-tolerance settings the host
	// application has configured.
	Options() Options
}

// Options controls how tolerant the core is of malformed or unsupported
// input.
type Options struct {
	// AllowErrorInOption downgrades missing-resource and color-conversion
	// errors to recoverable fallbacks (solid black, skipped draw) instead
	// of aborting the page render.
	AllowErrorInOption bool
}

const maxRefDepth = 16

// Resolve follows chains of indirect references until it reaches a
// non-reference object. If obj is not a Reference, it is returned
// unchanged. A chain longer than maxRefDepth is reported as a malformed
// file rather than looping forever.
func Resolve(r Getter, obj Object) (Object, error) {
	if obj == nil {
		return nil, nil
	}

	ref, isRef := obj.(Reference)
	if !isRef {
		return obj, nil
	}

	origRef := ref
	for depth := 0; ; depth++ {
		if depth > maxRefDepth {
			return nil, &MalformedFileError{
				Err: errors.New("too many levels of indirection"),
				Loc: origRef.String(),
			}
		}
		next, err := r.Get(ref)
		if err != nil {
			return nil, err
		}
		ref, isRef = next.(Reference)
		if !isRef {
			return next, nil
		}
	}
}

func resolveAndCast[T Object](r Getter, obj Object) (T, error) {
	var zero T
	resolved, err := Resolve(r, obj)
	if err != nil {
		return zero, err
	}
	if resolved == nil {
		return zero, nil
	}
	x, ok := resolved.(T)
	if !ok {
		return zero, &MalformedFileError{
			Err: fmt.Errorf("expected %T but got %T", zero, resolved),
		}
	}
	return x, nil
}

// Helper functions for reading objects of a specific type. Each resolves
// indirect references first; a PDF null resolves to the type's zero value
// without error.
var (
	GetArray  = resolveAndCast[Array]
	GetBool   = resolveAndCast[Boolean]
	GetDict   = resolveAndCast[Dict]
	GetName   = resolveAndCast[Name]
	GetString = resolveAndCast[String]
)

// GetNumber resolves obj and requires it to be an Integer or Real.
func GetNumber(r Getter, obj Object) (Number, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := resolved.(type) {
	case Integer:
		return Number(x), nil
	case Real:
		return Number(x), nil
	case nil:
		return 0, nil
	default:
		return 0, &MalformedFileError{
			Err: fmt.Errorf("expected Number but got %T", resolved),
		}
	}
}

// GetFloatArray resolves obj as an Array of Numbers and returns their
// float64 values.
func GetFloatArray(r Getter, obj Object) ([]float64, error) {
	arr, err := GetArray(r, obj)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([]float64, len(arr))
	for i, item := range arr {
		n, err := GetNumber(r, item)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = float64(n)
	}
	return out, nil
}

// GetRectangle resolves obj as a 4-element numeric Array.
func GetRectangle(r Getter, obj Object) (*Rectangle, error) {
	a, err := GetFloatArray(r, obj)
	if err != nil || a == nil {
		return nil, err
	}
	if len(a) != 4 {
		return nil, &MalformedFileError{Err: errors.New("not a valid rectangle")}
	}
	lo := func(a, b float64) float64 {
		if a < b {
			return a
		}
		return b
	}
	hi := func(a, b float64) float64 {
		if a > b {
			return a
		}
		return b
	}
	return &Rectangle{
		LLx: lo(a[0], a[2]), LLy: lo(a[1], a[3]),
		URx: hi(a[0], a[2]), URy: hi(a[1], a[3]),
	}, nil
}
