package openxr

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
)

// Space is a frame of reference that poses are located in: a reference
// space of the session or the space of a pose action.
type Space struct {
	handle  driver.Space
	session *sessionShared
	driver  driver.InstanceDriver
	state   handleState
}

func newSpace(session *sessionShared, handle driver.Space) *Space {
	session.refs.retain()
	Logger().Debug("created space", zap.Uint64("handle", uint64(handle)))
	return &Space{handle: handle, session: session, driver: session.driver}
}

func (s *Space) check() error {
	if s == nil {
		return errors.Wrap(common.ErrHandleDestroyed, "nil space")
	}
	return s.state.check("space")
}

// Destroy destroys the native space and releases the session. Calling it
// again does nothing.
func (s *Space) Destroy() {
	if !s.state.markDestroyed() {
		return
	}
	res, err := s.driver.XrDestroySpace(s.handle)
	checkResult("space", res, err)
	Logger().Debug("destroyed space", zap.Uint64("handle", uint64(s.handle)))
	s.session.refs.drop()
}

func (s *Space) Handle() driver.Space {
	return s.handle
}

type SpaceLocation struct {
	Flags common.SpaceLocationFlags
	Pose  common.Posef
}

// Locate returns the pose of s relative to base at the given time. Check
// Flags before trusting either half of the pose.
func (s *Space) Locate(base *Space, time common.Time) (SpaceLocation, common.Result, error) {
	if err := s.check(); err != nil {
		return SpaceLocation{}, common.ErrorHandleInvalid, err
	}
	if err := base.check(); err != nil {
		return SpaceLocation{}, common.ErrorHandleInvalid, err
	}

	location := driver.SpaceLocation{Type: driver.TypeSpaceLocation}
	res, err := s.driver.XrLocateSpace(s.handle, base.handle, time, &location)
	if err != nil {
		return SpaceLocation{}, res, err
	}
	return SpaceLocation{Flags: location.LocationFlags, Pose: location.Pose}, res, nil
}

// UUID returns the persistent identifier the runtime assigned to the space.
// Requires XR_FB_spatial_entity.
func (s *Space) UUID() (uuid.UUID, common.Result, error) {
	if err := s.check(); err != nil {
		return uuid.Nil, common.ErrorHandleInvalid, err
	}
	if err := s.session.instance.requireExtension(driver.ExtensionFBSpatialEntity, "xrGetSpaceUuidFB"); err != nil {
		return uuid.Nil, common.ErrorFunctionUnsupported, err
	}

	var raw driver.UUID
	res, err := s.driver.XrGetSpaceUUIDFB(s.handle, &raw)
	if err != nil {
		return uuid.Nil, res, err
	}
	return uuid.UUID(raw), res, nil
}

// SetName attaches a debug name to the space. Requires XR_EXT_debug_utils.
func (s *Space) SetName(name string) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.session.instance.setName(common.ObjectTypeSpace, uint64(s.handle), name)
}
