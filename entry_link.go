//go:build xr_static && cgo

package openxr

import "github.com/vkngwrapper/openxr/driver"

// Linked returns an entry over the loader linked in at build time.
func Linked() (*Entry, error) {
	d, err := driver.Linked()
	if err != nil {
		return nil, err
	}
	return NewEntry(d), nil
}
