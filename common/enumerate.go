package common

import "github.com/cockroachdb/errors"

// EnumerateFunc is the shape of every native two-call query: offer a buffer of
// capacity elements, receive the number of elements written (or required) in
// count. buf is nil when capacity is zero.
type EnumerateFunc[T any] func(capacity uint32, count *uint32, buf *T) (Result, error)

// Enumerate runs the two-call capacity probe. It asks for the element count
// with a nil buffer, allocates exactly that many elements, tags each one with
// init (which may be nil) and fills them. If the runtime reports
// ErrorSizeInsufficient during the fill, the buffer is reallocated to the newly
// reported count and the fill is repeated. A count that does not grow past the
// capacity just offered, or more than MaxEnumerateAttempts fills, ends in
// ErrUnstableCount.
//
// A zero count yields an empty, non-nil slice and no fill call.
func Enumerate[T any](init func(*T), call EnumerateFunc[T]) ([]T, Result, error) {
	var count uint32
	res, err := call(0, &count, nil)
	if err != nil {
		return nil, res, err
	}
	if count == 0 {
		return []T{}, res, nil
	}

	for attempt := 0; attempt < MaxEnumerateAttempts; attempt++ {
		capacity := count
		buf := make([]T, capacity)
		if init != nil {
			for i := range buf {
				init(&buf[i])
			}
		}

		res, err = call(capacity, &count, &buf[0])
		if res == ErrorSizeInsufficient {
			if count <= capacity {
				return nil, res, errors.Wrapf(ErrUnstableCount,
					"runtime asked for %d elements after %d were offered", count, capacity)
			}
			continue
		}
		if err != nil {
			return nil, res, err
		}
		if count > capacity {
			return nil, res, errors.Wrapf(ErrUnstableCount,
				"runtime reported %d elements written into a buffer of %d", count, capacity)
		}
		return buf[:count], res, nil
	}

	return nil, ErrorSizeInsufficient, errors.Wrapf(ErrUnstableCount,
		"element count still changing after %d attempts", MaxEnumerateAttempts)
}

// EnumerateString runs the capacity probe for a native string. The count the
// runtime reports includes the terminator; the result is cut at the first NUL
// inside the written range and must be valid UTF-8.
func EnumerateString(call EnumerateFunc[byte]) (string, Result, error) {
	buf, res, err := Enumerate(nil, call)
	if err != nil {
		return "", res, err
	}
	s, err := DecodeFixed(buf)
	if err != nil {
		return "", res, err
	}
	return s, res, nil
}
