package common

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

func validateName(s string) error {
	if !utf8.ValidString(s) {
		return errors.Wrapf(ErrMalformedString, "%q is not valid UTF-8", s)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return errors.Wrapf(ErrMalformedString, "%q contains a NUL byte", s)
	}
	return nil
}

// EncodeFixed writes s into a fixed-capacity, NUL-terminated field. Names are
// rejected, never truncated: a name of len(dst)-1 bytes fits, one byte more
// fails with ErrNameTooLong and dst is left untouched.
func EncodeFixed(dst []byte, s string) error {
	if err := validateName(s); err != nil {
		return err
	}
	if len(s) > len(dst)-1 {
		return errors.WithDetailf(
			errors.Wrapf(ErrNameTooLong, "%q is %d bytes", s, len(s)),
			"the field holds at most %d bytes plus a terminator", len(dst)-1)
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

// DecodeFixed reads a NUL-terminated string out of a fixed-capacity field. A
// field with no terminator is read up to its capacity and no further.
func DecodeFixed(src []byte) (string, error) {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	if !utf8.Valid(src) {
		return "", errors.Wrap(ErrMalformedString, "runtime returned invalid UTF-8")
	}
	return string(src), nil
}

// CString returns a NUL-terminated copy of s suitable for passing to a native
// call that takes a const char pointer.
func CString(s string) (*byte, error) {
	if err := validateName(s); err != nil {
		return nil, err
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &buf[0], nil
}

// StringArray packs names into a contiguous array of NUL-terminated string
// pointers, as native create-info structures expect. Each name must fit in
// maxSize bytes including its terminator. The returned slice is nil when
// names is empty.
func StringArray(names []string, maxSize int) ([]*byte, error) {
	if len(names) == 0 {
		return nil, nil
	}
	total := 0
	for _, name := range names {
		if err := validateName(name); err != nil {
			return nil, err
		}
		if len(name) > maxSize-1 {
			return nil, errors.Wrapf(ErrNameTooLong, "%q is %d bytes, limit is %d", name, len(name), maxSize-1)
		}
		total += len(name) + 1
	}

	storage := make([]byte, total)
	ptrs := make([]*byte, len(names))
	offset := 0
	for i, name := range names {
		copy(storage[offset:], name)
		ptrs[i] = &storage[offset]
		offset += len(name) + 1
	}
	return ptrs, nil
}
