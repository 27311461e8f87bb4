package fakeruntime

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// GraphicsKind is the graphics binding a fake session was created with.
type GraphicsKind int

const (
	GraphicsHeadless GraphicsKind = iota
	GraphicsVulkan
	GraphicsOpenGL
)

type sessionState struct {
	handle    driver.Session
	instance  *instanceState
	graphics  GraphicsKind
	destroyed bool

	state         common.SessionState
	running       bool
	exitRequested bool
	viewConfig    common.ViewConfigurationType
	now           common.Time

	waitPending bool
	frameBegun  bool
	frameTime   common.Time
	framesEnded int
	lastFrame   FrameRecord

	attached map[driver.ActionSet]bool
}

type spaceState struct {
	handle    driver.Space
	session   *sessionState
	destroyed bool

	referenceType common.ReferenceSpaceType
	action        driver.Action
	subaction     driver.Path
	pose          common.Posef
}

// transition moves a session to a new state and queues the event a real
// runtime would send.
func (r *Runtime) transition(s *sessionState, state common.SessionState) {
	s.state = state
	s.now += common.Time(r.opts.DisplayPeriod)
	event := driver.EventDataSessionStateChanged{
		Type:    driver.TypeEventDataSessionStateChanged,
		Session: s.handle,
		State:   state,
		Time:    s.now,
	}
	s.instance.push(func(buf *driver.EventDataBuffer) {
		*(*driver.EventDataSessionStateChanged)(unsafe.Pointer(buf)) = event
	})
}

// SetSessionState forces a session into a state and queues the matching
// event, as a runtime does when the user takes the headset off or the
// system shuts down. Moving to Stopping also ends the frame loop's right to
// submit.
func (r *Runtime) SetSessionState(session driver.Session, state common.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[session]
	if s == nil || s.destroyed {
		return errors.Newf("unknown session %d", session)
	}
	r.transition(s, state)
	return nil
}

// SessionState returns the runtime's view of a session's state.
func (r *Runtime) SessionState(session driver.Session) common.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.sessions[session]; s != nil {
		return s.state
	}
	return common.SessionStateUnknown
}

// SessionGraphics returns the graphics binding a session was created with.
func (r *Runtime) SessionGraphics(session driver.Session) GraphicsKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.sessions[session]; s != nil {
		return s.graphics
	}
	return GraphicsHeadless
}

func (d *instanceDriver) session(handle driver.Session) *sessionState {
	s := d.r.sessions[handle]
	if s == nil || s.destroyed || s.instance.handle != d.instance {
		return nil
	}
	return s
}

func (d *instanceDriver) XrCreateSession(createInfo *driver.SessionCreateInfo, session *driver.Session) (common.Result, error) {
	state := d.enter("xrCreateSession")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeSessionCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	if !state.systems[createInfo.SystemID] {
		return result(common.ErrorSystemInvalid)
	}

	var graphics GraphicsKind
	var extension string
	if createInfo.Next == nil {
		if !state.enabled(driver.ExtensionMNDHeadless) {
			return result(common.ErrorGraphicsDeviceInvalid)
		}
		graphics = GraphicsHeadless
	} else {
		switch *(*driver.StructureType)(createInfo.Next) {
		case driver.TypeGraphicsBindingVulkanKHR:
			graphics, extension = GraphicsVulkan, driver.ExtensionKHRVulkanEnable
		case driver.TypeGraphicsBindingOpenGLXlibKHR:
			graphics, extension = GraphicsOpenGL, driver.ExtensionKHROpenGLEnable
		default:
			return result(common.ErrorValidationFailure)
		}
		if !state.enabled(extension) {
			return result(common.ErrorValidationFailure)
		}
		if !state.requirements[extension] {
			return result(common.ErrorGraphicsRequirementsCallMissing)
		}
	}

	s := &sessionState{
		handle:   driver.Session(d.r.handle()),
		instance: state,
		graphics: graphics,
		attached: map[driver.ActionSet]bool{},
	}
	d.r.sessions[s.handle] = s
	d.r.counters.SessionsCreated++
	d.r.transition(s, common.SessionStateIdle)
	d.r.transition(s, common.SessionStateReady)
	*session = s.handle
	return result(common.Success)
}

func (d *instanceDriver) XrDestroySession(session driver.Session) (common.Result, error) {
	state := d.enter("xrDestroySession")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}

	for _, sc := range d.r.swapchains {
		if sc.session == s && !sc.destroyed {
			d.r.violation("session %d destroyed before swapchain %d", s.handle, sc.handle)
		}
	}
	for _, sp := range d.r.spaces {
		if sp.session == s && !sp.destroyed {
			d.r.violation("session %d destroyed before space %d", s.handle, sp.handle)
		}
	}
	s.destroyed = true
	d.r.counters.SessionsDestroyed++
	return result(common.Success)
}

func (d *instanceDriver) XrBeginSession(session driver.Session, beginInfo *driver.SessionBeginInfo) (common.Result, error) {
	state := d.enter("xrBeginSession")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if beginInfo.Type != driver.TypeSessionBeginInfo {
		return result(common.ErrorValidationFailure)
	}
	if !d.r.viewConfigurationSupported(beginInfo.PrimaryViewConfigurationType) {
		return result(common.ErrorViewConfigurationTypeUnsupported)
	}
	if s.running {
		return result(common.ErrorSessionRunning)
	}
	if s.state != common.SessionStateReady {
		return result(common.ErrorSessionNotReady)
	}

	s.running = true
	s.exitRequested = false
	s.viewConfig = beginInfo.PrimaryViewConfigurationType
	s.waitPending = false
	s.frameBegun = false
	return result(common.Success)
}

func (d *instanceDriver) XrRequestExitSession(session driver.Session) (common.Result, error) {
	state := d.enter("xrRequestExitSession")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !s.running {
		return result(common.ErrorSessionNotRunning)
	}

	s.exitRequested = true
	if s.state != common.SessionStateStopping {
		d.r.transition(s, common.SessionStateStopping)
	}
	return result(common.Success)
}

func (d *instanceDriver) XrEndSession(session driver.Session) (common.Result, error) {
	state := d.enter("xrEndSession")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !s.running {
		return result(common.ErrorSessionNotRunning)
	}
	if s.state != common.SessionStateStopping {
		return result(common.ErrorSessionNotStopping)
	}

	s.running = false
	s.waitPending = false
	s.frameBegun = false
	d.r.transition(s, common.SessionStateIdle)
	if s.exitRequested {
		d.r.transition(s, common.SessionStateExiting)
	} else {
		d.r.transition(s, common.SessionStateReady)
	}
	return result(common.Success)
}

func (d *instanceDriver) XrEnumerateReferenceSpaces(session driver.Session, capacity uint32, count *uint32, spaces *common.ReferenceSpaceType) (common.Result, error) {
	state := d.enter("xrEnumerateReferenceSpaces")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}

	available := append([]common.ReferenceSpaceType{}, d.r.opts.ReferenceSpaces...)
	available = append(available, d.r.opts.ReferenceSpacesAddedAfterProbe[:d.r.addedSpaces]...)
	res := fill(available, capacity, count, spaces)
	if capacity == 0 && d.r.addedSpaces < len(d.r.opts.ReferenceSpacesAddedAfterProbe) {
		d.r.addedSpaces++
	}
	return result(res)
}

func (r *Runtime) referenceSpaceSupported(t common.ReferenceSpaceType) bool {
	for _, supported := range r.opts.ReferenceSpaces {
		if supported == t {
			return true
		}
	}
	for _, supported := range r.opts.ReferenceSpacesAddedAfterProbe[:r.addedSpaces] {
		if supported == t {
			return true
		}
	}
	return false
}

func validPose(p common.Posef) bool {
	q := p.Orientation
	length := math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W))
	return math.Abs(length-1) < 1e-3
}

func (d *instanceDriver) XrCreateReferenceSpace(session driver.Session, createInfo *driver.ReferenceSpaceCreateInfo, space *driver.Space) (common.Result, error) {
	state := d.enter("xrCreateReferenceSpace")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeReferenceSpaceCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	if !d.r.referenceSpaceSupported(createInfo.ReferenceSpaceType) {
		return result(common.ErrorReferenceSpaceUnsupported)
	}
	if !validPose(createInfo.PoseInReferenceSpace) {
		return result(common.ErrorPoseInvalid)
	}

	sp := &spaceState{
		handle:        driver.Space(d.r.handle()),
		session:       s,
		referenceType: createInfo.ReferenceSpaceType,
		pose:          createInfo.PoseInReferenceSpace,
	}
	d.r.spaces[sp.handle] = sp
	d.r.counters.SpacesCreated++
	*space = sp.handle
	return result(common.Success)
}

func (d *instanceDriver) XrGetReferenceSpaceBoundsRect(session driver.Session, referenceSpaceType common.ReferenceSpaceType, bounds *common.Extent2Df) (common.Result, error) {
	state := d.enter("xrGetReferenceSpaceBoundsRect")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if !d.r.referenceSpaceSupported(referenceSpaceType) {
		return result(common.ErrorReferenceSpaceUnsupported)
	}
	if referenceSpaceType != common.ReferenceSpaceTypeStage {
		*bounds = common.Extent2Df{}
		return result(common.SpaceBoundsUnavailable)
	}
	*bounds = common.Extent2Df{Width: 2, Height: 3}
	return result(common.Success)
}

func (d *instanceDriver) XrCreateActionSpace(session driver.Session, createInfo *driver.ActionSpaceCreateInfo, space *driver.Space) (common.Result, error) {
	state := d.enter("xrCreateActionSpace")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeActionSpaceCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	a := d.r.actions[createInfo.Action]
	if a == nil || a.destroyed {
		return result(common.ErrorHandleInvalid)
	}
	if a.actionType != common.ActionTypePoseInput {
		return result(common.ErrorActionTypeMismatch)
	}
	if createInfo.SubactionPath != driver.NullPath && !a.hasSubaction(createInfo.SubactionPath) {
		return result(common.ErrorPathUnsupported)
	}
	if !validPose(createInfo.PoseInActionSpace) {
		return result(common.ErrorPoseInvalid)
	}

	sp := &spaceState{
		handle:    driver.Space(d.r.handle()),
		session:   s,
		action:    createInfo.Action,
		subaction: createInfo.SubactionPath,
		pose:      createInfo.PoseInActionSpace,
	}
	d.r.spaces[sp.handle] = sp
	d.r.counters.SpacesCreated++
	*space = sp.handle
	return result(common.Success)
}

func (d *instanceDriver) XrDestroySpace(space driver.Space) (common.Result, error) {
	state := d.enter("xrDestroySpace")
	defer d.leave()
	sp := d.r.spaces[space]
	if state == nil || sp == nil || sp.destroyed {
		return result(common.ErrorHandleInvalid)
	}
	sp.destroyed = true
	d.r.counters.SpacesDestroyed++
	return result(common.Success)
}

// referenceOrigin is where each reference space sits in the fake's world,
// which coincides with the stage.
func referenceOrigin(t common.ReferenceSpaceType) mgl32.Mat4 {
	switch t {
	case common.ReferenceSpaceTypeView:
		return mgl32.Translate3D(0, 1.6, 0)
	case common.ReferenceSpaceTypeLocal:
		return mgl32.Translate3D(0, 1.6, 0.5)
	}
	return mgl32.Ident4()
}

// worldPose returns the space's pose in world coordinates and whether it is
// tracked.
func (r *Runtime) worldPose(sp *spaceState) (mgl32.Mat4, bool) {
	if sp.action == driver.NullAction {
		return referenceOrigin(sp.referenceType).Mul4(sp.pose.Matrix()), true
	}
	a := r.actions[sp.action]
	if a == nil || a.destroyed || !sp.session.attached[a.set.handle] {
		return mgl32.Ident4(), false
	}
	hand := mgl32.Translate3D(0.2, 1.3, -0.3)
	if name, _ := r.pathString(sp.subaction); name == "/user/hand/left" {
		hand = mgl32.Translate3D(-0.2, 1.3, -0.3)
	}
	return hand.Mul4(sp.pose.Matrix()), true
}

func poseFromMatrix(m mgl32.Mat4) common.Posef {
	return common.Posef{
		Orientation: common.QuaternionfFromMgl(mgl32.Mat4ToQuat(m).Normalize()),
		Position:    common.Vector3fFromMgl(m.Col(3).Vec3()),
	}
}

func (d *instanceDriver) XrLocateSpace(space driver.Space, baseSpace driver.Space, time common.Time, location *driver.SpaceLocation) (common.Result, error) {
	state := d.enter("xrLocateSpace")
	defer d.leave()
	sp, base := d.r.spaces[space], d.r.spaces[baseSpace]
	if state == nil || sp == nil || sp.destroyed || base == nil || base.destroyed {
		return result(common.ErrorHandleInvalid)
	}
	if sp.session != base.session {
		return result(common.ErrorValidationFailure)
	}
	if location.Type != driver.TypeSpaceLocation {
		return result(common.ErrorValidationFailure)
	}
	if time <= 0 {
		return result(common.ErrorTimeInvalid)
	}

	world, tracked := d.r.worldPose(sp)
	baseWorld, baseTracked := d.r.worldPose(base)
	if !tracked || !baseTracked {
		location.LocationFlags = 0
		location.Pose = common.IdentityPose()
		return result(common.Success)
	}
	location.LocationFlags = common.SpaceLocationOrientationValid | common.SpaceLocationPositionValid |
		common.SpaceLocationOrientationTracked | common.SpaceLocationPositionTracked
	location.Pose = poseFromMatrix(baseWorld.Inv().Mul4(world))
	return result(common.Success)
}

func (d *instanceDriver) XrLocateViews(session driver.Session, locateInfo *driver.ViewLocateInfo, viewState *driver.ViewState, capacity uint32, count *uint32, views *driver.View) (common.Result, error) {
	state := d.enter("xrLocateViews")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if locateInfo.Type != driver.TypeViewLocateInfo || viewState.Type != driver.TypeViewState {
		return result(common.ErrorValidationFailure)
	}
	if !d.r.viewConfigurationSupported(locateInfo.ViewConfigurationType) {
		return result(common.ErrorViewConfigurationTypeUnsupported)
	}
	base := d.r.spaces[locateInfo.Space]
	if base == nil || base.destroyed || base.session != s {
		return result(common.ErrorHandleInvalid)
	}
	if locateInfo.DisplayTime <= 0 {
		return result(common.ErrorTimeInvalid)
	}

	baseWorld, _ := d.r.worldPose(base)
	head := referenceOrigin(common.ReferenceSpaceTypeView)
	n := viewCount(locateInfo.ViewConfigurationType)
	halfAngle := mgl32.DegToRad(45)

	res := fillTagged(n, capacity, count, views,
		func(v *driver.View) driver.StructureType { return v.Type },
		driver.TypeView,
		func(i int, v *driver.View) {
			offset := float32(0)
			if n == 2 {
				offset = float32(2*i-1) * 0.032
			}
			eye := head.Mul4(mgl32.Translate3D(offset, 0, 0))
			v.Pose = poseFromMatrix(baseWorld.Inv().Mul4(eye))
			v.Fov = common.Fovf{AngleLeft: -halfAngle, AngleRight: halfAngle, AngleUp: halfAngle, AngleDown: -halfAngle}
		})
	if res == common.Success && capacity > 0 {
		viewState.ViewStateFlags = common.ViewStateOrientationValid | common.ViewStatePositionValid |
			common.ViewStateOrientationTracked | common.ViewStatePositionTracked
	}
	return result(res)
}

func (d *instanceDriver) XrGetSpaceUUIDFB(space driver.Space, id *driver.UUID) (common.Result, error) {
	_, err := d.gated("xrGetSpaceUuidFB", driver.ExtensionFBSpatialEntity)
	defer d.leave()
	if err != nil {
		return common.ErrorFunctionUnsupported, err
	}
	sp := d.r.spaces[space]
	if sp == nil || sp.destroyed {
		return result(common.ErrorHandleInvalid)
	}
	*id = driver.UUID(SpaceUUID(space))
	return result(common.Success)
}

// SpaceUUID is the identifier the fake reports for a space.
func SpaceUUID(space driver.Space) uuid.UUID {
	var name [8]byte
	for i := range name {
		name[i] = byte(uint64(space) >> (8 * i))
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, name[:])
}
