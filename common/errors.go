package common

import "github.com/cockroachdb/errors"

var (
	// ErrNameTooLong is returned when a name does not fit the fixed-capacity
	// field it is encoded into. No native call is made.
	ErrNameTooLong = errors.New("name exceeds fixed field capacity")
	// ErrMalformedString is returned when the runtime hands back text that is
	// not valid UTF-8, or when a caller supplies a name with an interior NUL.
	ErrMalformedString = errors.New("malformed string")
	// ErrUnstableCount is returned when the runtime keeps reporting a required
	// element count that never settles.
	ErrUnstableCount = errors.New("runtime reported an unstable element count")
	// ErrExtensionNotEnabled marks calls into extension-gated functions whose
	// extension was not enabled on the instance.
	ErrExtensionNotEnabled = errors.New("extension not enabled")
	// ErrHandleDestroyed is returned by any call on an object after Destroy.
	ErrHandleDestroyed = errors.New("handle already destroyed")
)

// ExtensionNotEnabled builds an error marked with ErrExtensionNotEnabled that
// names the missing extension and the function that needed it.
func ExtensionNotEnabled(extension, function string) error {
	return errors.Mark(
		errors.Newf("%s requires extension %s, which is not enabled", function, extension),
		ErrExtensionNotEnabled,
	)
}
