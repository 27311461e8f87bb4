package common

import "fmt"

// Version is a packed API version: 16 bits major, 16 bits minor, 32 bits patch.
type Version uint64

// CurrentAPIVersion is the header version these bindings were written against.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

func MakeVersion(major, minor, patch uint32) Version {
	return Version(uint64(major&0xffff)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

func (v Version) Major() uint32 { return uint32(uint64(v) >> 48 & 0xffff) }
func (v Version) Minor() uint32 { return uint32(uint64(v) >> 32 & 0xffff) }
func (v Version) Patch() uint32 { return uint32(uint64(v) & 0xffffffff) }

func (v Version) IsAtLeast(other Version) bool {
	return v >= other
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}
