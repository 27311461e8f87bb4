package common

import "time"

// Time is a runtime timestamp in nanoseconds. Its epoch is runtime defined.
type Time int64

// Duration is a span of runtime time in nanoseconds.
type Duration int64

const (
	// InfiniteDuration makes WaitImage block until the image is available.
	InfiniteDuration Duration = 0x7fffffffffffffff
	// NoDuration polls without blocking.
	NoDuration Duration = 0
)

func (d Duration) ToStd() time.Duration {
	return time.Duration(d)
}

func DurationFromStd(d time.Duration) Duration {
	return Duration(d)
}

// Add returns t advanced by d.
func (t Time) Add(d Duration) Time {
	return t + Time(d)
}

// Bool32 is the 32-bit boolean used in native structures.
type Bool32 uint32

const (
	False Bool32 = 0
	True  Bool32 = 1
)

func BoolToBool32(b bool) Bool32 {
	if b {
		return True
	}
	return False
}

func (b Bool32) Bool() bool {
	return b != False
}

// Capacities of the fixed-size string fields in native structures. Each
// includes the terminating NUL.
const (
	MaxApplicationNameSize        = 128
	MaxEngineNameSize             = 128
	MaxExtensionNameSize          = 128
	MaxAPILayerNameSize           = 256
	MaxAPILayerDescriptionSize    = 256
	MaxSystemNameSize             = 256
	MaxRuntimeNameSize            = 128
	MaxResultStringSize           = 64
	MaxStructureNameSize          = 64
	MaxActionSetNameSize          = 64
	MaxLocalizedActionSetNameSize = 128
	MaxActionNameSize             = 64
	MaxLocalizedActionNameSize    = 128
	MaxPathLength                 = 256
)

// MaxEnumerateAttempts bounds the fill calls Enumerate makes before giving up
// on a runtime whose reported count keeps moving.
const MaxEnumerateAttempts = 8
