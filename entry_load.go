//go:build !xr_static

package openxr

import "github.com/vkngwrapper/openxr/driver"

// Load opens the runtime loader under its platform default name.
func Load() (*Entry, error) {
	d, err := driver.Load()
	if err != nil {
		return nil, err
	}
	return NewEntry(d), nil
}

// LoadFrom opens the runtime loader at path.
func LoadFrom(path string) (*Entry, error) {
	d, err := driver.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	return NewEntry(d), nil
}
