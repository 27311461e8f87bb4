package common_test

import "unsafe"

func unsafeSlice[T any](p *T, n uint32) []T {
	return unsafe.Slice(p, n)
}
