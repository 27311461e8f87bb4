package driver

import (
	"runtime"
	"unsafe"
)

// maxArgs is the widest native signature this package calls.
const maxArgs = 8

// args marshals one native call's arguments into machine words. Every runtime
// entry point takes only handles, integers and pointers, all of which travel
// in integer registers, so a word per argument is enough. Go memory passed by
// pointer stays pinned until the call returns.
type args struct {
	pin   runtime.Pinner
	words [maxArgs]uint64
	n     int
}

func (a *args) push(w uint64) *args {
	a.words[a.n] = w
	a.n++
	return a
}

func (a *args) ptr(p unsafe.Pointer) *args {
	if p != nil {
		a.pin.Pin(p)
	}
	return a.push(uint64(uintptr(p)))
}

func (a *args) u64(v uint64) *args { return a.push(v) }
func (a *args) u32(v uint32) *args { return a.push(uint64(v)) }
func (a *args) i32(v int32) *args  { return a.push(uint64(uint32(v))) }
func (a *args) i64(v int64) *args  { return a.push(uint64(v)) }

func (a *args) slice() []uint64 {
	return a.words[:a.n]
}

func (a *args) done() {
	a.pin.Unpin()
}
