package driver

import "fmt"

// LoadError reports a runtime library that could not be opened or a required
// entry point that could not be resolved. Path is empty for symbols resolved
// through xrGetInstanceProcAddr.
type LoadError struct {
	Path   string
	Symbol string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Symbol != "" && e.Path != "":
		return fmt.Sprintf("resolving %s in %s: %v", e.Symbol, e.Path, e.Err)
	case e.Symbol != "":
		return fmt.Sprintf("resolving %s: %v", e.Symbol, e.Err)
	default:
		return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
