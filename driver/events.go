package driver

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
)

// EventDataBuffer receives one event from XrPollEvent. The runtime overwrites
// Type with the type of the event it wrote; reinterpret the buffer with the
// matching EventData structure.
type EventDataBuffer struct {
	Type    StructureType
	Next    unsafe.Pointer
	Varying [4000]byte
}

// Reset re-tags the buffer so it can be passed to XrPollEvent again.
func (b *EventDataBuffer) Reset() {
	b.Type = TypeEventDataBuffer
	b.Next = nil
}

type EventDataSessionStateChanged struct {
	Type    StructureType
	Next    unsafe.Pointer
	Session Session
	State   common.SessionState
	Time    common.Time
}

type EventDataInstanceLossPending struct {
	Type     StructureType
	Next     unsafe.Pointer
	LossTime common.Time
}

type EventDataEventsLost struct {
	Type           StructureType
	Next           unsafe.Pointer
	LostEventCount uint32
}

type EventDataReferenceSpaceChangePending struct {
	Type                StructureType
	Next                unsafe.Pointer
	Session             Session
	ReferenceSpaceType  common.ReferenceSpaceType
	ChangeTime          common.Time
	PoseValid           common.Bool32
	PoseInPreviousSpace common.Posef
}

type EventDataInteractionProfileChanged struct {
	Type    StructureType
	Next    unsafe.Pointer
	Session Session
}

type EventDataVisibilityMaskChangedKHR struct {
	Type                  StructureType
	Next                  unsafe.Pointer
	Session               Session
	ViewConfigurationType common.ViewConfigurationType
	ViewIndex             uint32
}
