package openxr

import (
	"unsafe"

	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
)

// Event is one event returned by Instance.PollEvent. Switch on the concrete
// type.
type Event interface {
	StructureType() driver.StructureType
}

type EventSessionStateChanged struct {
	Session driver.Session
	State   common.SessionState
	Time    common.Time
}

func (*EventSessionStateChanged) StructureType() driver.StructureType {
	return driver.TypeEventDataSessionStateChanged
}

// EventInstanceLossPending announces that the instance will be lost at
// LossTime. Destroy it and every object created from it.
type EventInstanceLossPending struct {
	LossTime common.Time
}

func (*EventInstanceLossPending) StructureType() driver.StructureType {
	return driver.TypeEventDataInstanceLossPending
}

// EventsLost reports that the runtime's queue overflowed and older events
// were dropped.
type EventsLost struct {
	LostEventCount uint32
}

func (*EventsLost) StructureType() driver.StructureType {
	return driver.TypeEventDataEventsLost
}

type EventReferenceSpaceChangePending struct {
	Session             driver.Session
	ReferenceSpaceType  common.ReferenceSpaceType
	ChangeTime          common.Time
	PoseValid           bool
	PoseInPreviousSpace common.Posef
}

func (*EventReferenceSpaceChangePending) StructureType() driver.StructureType {
	return driver.TypeEventDataReferenceSpaceChange
}

type EventInteractionProfileChanged struct {
	Session driver.Session
}

func (*EventInteractionProfileChanged) StructureType() driver.StructureType {
	return driver.TypeEventDataInteractionProfileChange
}

type EventVisibilityMaskChanged struct {
	Session               driver.Session
	ViewConfigurationType common.ViewConfigurationType
	ViewIndex             uint32
}

func (*EventVisibilityMaskChanged) StructureType() driver.StructureType {
	return driver.TypeEventDataVisibilityMaskChangedKHR
}

// EventUnknown is an event of a type this package does not decode, such as
// one of an extension it does not know. Data holds the raw buffer.
type EventUnknown struct {
	Type driver.StructureType
	Data []byte
}

func (e *EventUnknown) StructureType() driver.StructureType {
	return e.Type
}

// PollEvent returns the next queued event, or nil with EventUnavailable when
// the queue is empty. Session state changes are recorded on the matching
// session, see Session.State.
func (i *Instance) PollEvent() (Event, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	var buf driver.EventDataBuffer
	buf.Reset()
	res, err := i.driver.XrPollEvent(&buf)
	if err != nil || res == common.EventUnavailable {
		return nil, res, err
	}

	event := decodeEvent(&buf)
	if changed, ok := event.(*EventSessionStateChanged); ok {
		if session := i.lookupSession(changed.Session); session != nil {
			session.setState(changed.State)
		}
	}
	return event, res, nil
}

func eventAs[T any](buf *driver.EventDataBuffer) *T {
	return (*T)(unsafe.Pointer(buf))
}

func decodeEvent(buf *driver.EventDataBuffer) Event {
	switch buf.Type {
	case driver.TypeEventDataSessionStateChanged:
		e := eventAs[driver.EventDataSessionStateChanged](buf)
		return &EventSessionStateChanged{Session: e.Session, State: e.State, Time: e.Time}
	case driver.TypeEventDataInstanceLossPending:
		e := eventAs[driver.EventDataInstanceLossPending](buf)
		return &EventInstanceLossPending{LossTime: e.LossTime}
	case driver.TypeEventDataEventsLost:
		e := eventAs[driver.EventDataEventsLost](buf)
		return &EventsLost{LostEventCount: e.LostEventCount}
	case driver.TypeEventDataReferenceSpaceChange:
		e := eventAs[driver.EventDataReferenceSpaceChangePending](buf)
		return &EventReferenceSpaceChangePending{
			Session:             e.Session,
			ReferenceSpaceType:  e.ReferenceSpaceType,
			ChangeTime:          e.ChangeTime,
			PoseValid:           e.PoseValid.Bool(),
			PoseInPreviousSpace: e.PoseInPreviousSpace,
		}
	case driver.TypeEventDataInteractionProfileChange:
		e := eventAs[driver.EventDataInteractionProfileChanged](buf)
		return &EventInteractionProfileChanged{Session: e.Session}
	case driver.TypeEventDataVisibilityMaskChangedKHR:
		e := eventAs[driver.EventDataVisibilityMaskChangedKHR](buf)
		return &EventVisibilityMaskChanged{
			Session:               e.Session,
			ViewConfigurationType: e.ViewConfigurationType,
			ViewIndex:             e.ViewIndex,
		}
	}

	Logger().Debug("unknown event", zap.Int32("type", int32(buf.Type)))
	data := make([]byte, len(buf.Varying))
	copy(data, buf.Varying[:])
	return &EventUnknown{Type: buf.Type, Data: data}
}
