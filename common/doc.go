// Package common holds the vocabulary shared by every layer of the bindings:
// result codes, versions, runtime time, enums, native-layout math types and
// the capacity-probing helpers used by every call that returns a
// runtime-sized array or string.
package common
