package driver

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
)

// proc is one resolved native function.
type proc struct {
	name string
	argc int
	fn   nativeFunc
}

func newProc(name string, argc int, addr unsafe.Pointer) (proc, error) {
	if addr == nil {
		return proc{}, &LoadError{Symbol: name, Err: errors.New("null function pointer")}
	}
	fn, err := newNativeFunc(addr, argc)
	if err != nil {
		return proc{}, &LoadError{Symbol: name, Err: err}
	}
	return proc{name: name, argc: argc, fn: fn}, nil
}

func (p *proc) loaded() bool {
	return p.fn.addr() != nil
}

// call invokes the function and maps the status the way every driver method
// reports it: the raw result plus a non-nil error for failure codes.
func (p *proc) call(a *args) (common.Result, error) {
	defer a.done()
	if !p.loaded() {
		return common.ErrorFunctionUnsupported, errors.Wrapf(common.ErrorFunctionUnsupported.ToError(), "%s was never resolved", p.name)
	}
	if a.n != p.argc {
		return common.ErrorValidationFailure, errors.AssertionFailedf("%s takes %d arguments, got %d", p.name, p.argc, a.n)
	}
	raw, err := p.fn.invoke(a.slice())
	if err != nil {
		return common.ErrorRuntimeFailure, errors.Wrapf(err, "calling %s", p.name)
	}
	res := common.Result(raw)
	return res, res.ToError()
}

// procSlot names a proc to resolve and where to store it.
type procSlot struct {
	dst  *proc
	name string
	argc int
}
