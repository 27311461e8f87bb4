package openxr

import (
	"slices"

	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// ExtensionSet maps extension names to the versions the runtime advertised.
type ExtensionSet map[string]uint32

func extensionSetFromProperties(props []driver.ExtensionProperties) (ExtensionSet, error) {
	set := make(ExtensionSet, len(props))
	for i := range props {
		name, err := common.DecodeFixed(props[i].ExtensionName[:])
		if err != nil {
			return nil, err
		}
		set[name] = props[i].ExtensionVersion
	}
	return set, nil
}

func (s ExtensionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the extension names in lexical order.
func (s ExtensionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Union returns a new set with the extensions of both s and other. Versions
// in other win.
func (s ExtensionSet) Union(other ExtensionSet) ExtensionSet {
	out := make(ExtensionSet, len(s)+len(other))
	for name, version := range s {
		out[name] = version
	}
	for name, version := range other {
		out[name] = version
	}
	return out
}
