package openxr

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

type ActionSetCreateInfo struct {
	// Name is a lowercase identifier of at most
	// common.MaxActionSetNameSize-1 bytes.
	Name          string
	LocalizedName string
	Priority      uint32
}

// ActionSet groups actions that are enabled and synced together. Its
// actions hold it alive: the native set is destroyed after Destroy was
// called on it and on every action created from it.
type ActionSet struct {
	handle   driver.ActionSet
	instance *Instance
	driver   driver.InstanceDriver
	name     string

	refs  *refCounter
	state handleState
}

// CreateActionSet creates an action set. Localized names are normalized to
// NFC before they are encoded.
func (i *Instance) CreateActionSet(info ActionSetCreateInfo) (*ActionSet, common.Result, error) {
	if err := i.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	createInfo := driver.ActionSetCreateInfo{
		Type:     driver.TypeActionSetCreateInfo,
		Priority: info.Priority,
	}
	if err := common.EncodeFixed(createInfo.ActionSetName[:], info.Name); err != nil {
		return nil, common.ErrorNameInvalid, errors.Wrap(err, "action set name")
	}
	localized := norm.NFC.String(info.LocalizedName)
	if err := common.EncodeFixed(createInfo.LocalizedActionSetName[:], localized); err != nil {
		return nil, common.ErrorLocalizedNameInvalid, errors.Wrap(err, "localized action set name")
	}

	var handle driver.ActionSet
	res, err := i.driver.XrCreateActionSet(&createInfo, &handle)
	if err != nil {
		return nil, res, errors.Wrapf(err, "action set %q", info.Name)
	}

	i.refs.retain()
	set := &ActionSet{handle: handle, instance: i, driver: i.driver, name: info.Name}
	set.refs = newRefCounter(1, set.release)
	Logger().Debug("created action set", zap.Uint64("handle", uint64(handle)), zap.String("name", info.Name))
	return set, res, nil
}

func (s *ActionSet) release() {
	res, err := s.driver.XrDestroyActionSet(s.handle)
	checkResult("action set", res, err)
	Logger().Debug("destroyed action set", zap.Uint64("handle", uint64(s.handle)))
	s.instance.refs.drop()
}

func (s *ActionSet) check() error {
	if s == nil {
		return errors.Wrap(common.ErrHandleDestroyed, "nil action set")
	}
	return s.state.check("action set")
}

// Destroy drops the caller's reference. Calling it again does nothing.
func (s *ActionSet) Destroy() {
	if s.state.markDestroyed() {
		s.refs.drop()
	}
}

func (s *ActionSet) Handle() driver.ActionSet {
	return s.handle
}

func (s *ActionSet) Name() string {
	return s.name
}

// SetName attaches a debug name to the action set. Requires
// XR_EXT_debug_utils.
func (s *ActionSet) SetName(name string) (common.Result, error) {
	if err := s.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return s.instance.setName(common.ObjectTypeActionSet, uint64(s.handle), name)
}

type ActionCreateInfo struct {
	// Name is a lowercase identifier of at most common.MaxActionNameSize-1
	// bytes, unique within the set.
	Name          string
	LocalizedName string
	Type          common.ActionType
	// SubactionPaths are the top level user paths, such as
	// "/user/hand/left", the action can be filtered by.
	SubactionPaths []driver.Path
}

// Action is one input or output of the application, bound to devices
// through interaction profiles.
type Action struct {
	handle     driver.Action
	set        *ActionSet
	driver     driver.InstanceDriver
	name       string
	actionType common.ActionType
	state      handleState
}

// CreateAction creates an action in the set. Actions can only be created
// before the set is attached to a session.
func (s *ActionSet) CreateAction(info ActionCreateInfo) (*Action, common.Result, error) {
	if err := s.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	createInfo := driver.ActionCreateInfo{
		Type:                driver.TypeActionCreateInfo,
		ActionType:          info.Type,
		CountSubactionPaths: uint32(len(info.SubactionPaths)),
		SubactionPaths:      unsafe.SliceData(info.SubactionPaths),
	}
	if err := common.EncodeFixed(createInfo.ActionName[:], info.Name); err != nil {
		return nil, common.ErrorNameInvalid, errors.Wrap(err, "action name")
	}
	localized := norm.NFC.String(info.LocalizedName)
	if err := common.EncodeFixed(createInfo.LocalizedActionName[:], localized); err != nil {
		return nil, common.ErrorLocalizedNameInvalid, errors.Wrap(err, "localized action name")
	}

	var handle driver.Action
	res, err := s.driver.XrCreateAction(s.handle, &createInfo, &handle)
	runtime.KeepAlive(info.SubactionPaths)
	if err != nil {
		return nil, res, errors.Wrapf(err, "action %q", info.Name)
	}

	s.refs.retain()
	Logger().Debug("created action",
		zap.Uint64("handle", uint64(handle)),
		zap.String("name", info.Name),
		zap.Stringer("type", info.Type))
	return &Action{handle: handle, set: s, driver: s.driver, name: info.Name, actionType: info.Type}, res, nil
}

func (a *Action) check() error {
	return a.state.check("action")
}

// Destroy destroys the native action and releases its set. Calling it again
// does nothing.
func (a *Action) Destroy() {
	if !a.state.markDestroyed() {
		return
	}
	res, err := a.driver.XrDestroyAction(a.handle)
	checkResult("action", res, err)
	Logger().Debug("destroyed action", zap.Uint64("handle", uint64(a.handle)))
	a.set.refs.drop()
}

func (a *Action) Handle() driver.Action {
	return a.handle
}

func (a *Action) Name() string {
	return a.name
}

func (a *Action) Type() common.ActionType {
	return a.actionType
}

// ActionState holds the state of an input action of value type T as of the
// last SyncActions.
type ActionState[T any] struct {
	CurrentState         T
	ChangedSinceLastSync bool
	LastChangeTime       common.Time
	IsActive             bool
}

func (a *Action) stateInfo(session SessionHandle, subactionPath driver.Path) (driver.ActionStateGetInfo, error) {
	if err := a.check(); err != nil {
		return driver.ActionStateGetInfo{}, err
	}
	if err := session.check(); err != nil {
		return driver.ActionStateGetInfo{}, err
	}
	return driver.ActionStateGetInfo{
		Type:          driver.TypeActionStateGetInfo,
		Action:        a.handle,
		SubactionPath: subactionPath,
	}, nil
}

func (a *Action) BooleanState(session SessionHandle, subactionPath driver.Path) (ActionState[bool], common.Result, error) {
	info, err := a.stateInfo(session, subactionPath)
	if err != nil {
		return ActionState[bool]{}, common.ErrorHandleInvalid, err
	}

	state := driver.ActionStateBoolean{Type: driver.TypeActionStateBoolean}
	res, err := a.driver.XrGetActionStateBoolean(session.Handle(), &info, &state)
	if err != nil {
		return ActionState[bool]{}, res, err
	}
	return ActionState[bool]{
		CurrentState:         state.CurrentState.Bool(),
		ChangedSinceLastSync: state.ChangedSinceLastSync.Bool(),
		LastChangeTime:       state.LastChangeTime,
		IsActive:             state.IsActive.Bool(),
	}, res, nil
}

func (a *Action) FloatState(session SessionHandle, subactionPath driver.Path) (ActionState[float32], common.Result, error) {
	info, err := a.stateInfo(session, subactionPath)
	if err != nil {
		return ActionState[float32]{}, common.ErrorHandleInvalid, err
	}

	state := driver.ActionStateFloat{Type: driver.TypeActionStateFloat}
	res, err := a.driver.XrGetActionStateFloat(session.Handle(), &info, &state)
	if err != nil {
		return ActionState[float32]{}, res, err
	}
	return ActionState[float32]{
		CurrentState:         state.CurrentState,
		ChangedSinceLastSync: state.ChangedSinceLastSync.Bool(),
		LastChangeTime:       state.LastChangeTime,
		IsActive:             state.IsActive.Bool(),
	}, res, nil
}

func (a *Action) Vector2fState(session SessionHandle, subactionPath driver.Path) (ActionState[common.Vector2f], common.Result, error) {
	info, err := a.stateInfo(session, subactionPath)
	if err != nil {
		return ActionState[common.Vector2f]{}, common.ErrorHandleInvalid, err
	}

	state := driver.ActionStateVector2f{Type: driver.TypeActionStateVector2f}
	res, err := a.driver.XrGetActionStateVector2f(session.Handle(), &info, &state)
	if err != nil {
		return ActionState[common.Vector2f]{}, res, err
	}
	return ActionState[common.Vector2f]{
		CurrentState:         state.CurrentState,
		ChangedSinceLastSync: state.ChangedSinceLastSync.Bool(),
		LastChangeTime:       state.LastChangeTime,
		IsActive:             state.IsActive.Bool(),
	}, res, nil
}

// PoseActive reports whether a pose action is bound to a tracked source. The
// pose itself is located through a space created with CreateSpace.
func (a *Action) PoseActive(session SessionHandle, subactionPath driver.Path) (bool, common.Result, error) {
	info, err := a.stateInfo(session, subactionPath)
	if err != nil {
		return false, common.ErrorHandleInvalid, err
	}

	state := driver.ActionStatePose{Type: driver.TypeActionStatePose}
	res, err := a.driver.XrGetActionStatePose(session.Handle(), &info, &state)
	if err != nil {
		return false, res, err
	}
	return state.IsActive.Bool(), res, nil
}

// CreateSpace creates a space that follows a pose action.
func (a *Action) CreateSpace(session SessionHandle, subactionPath driver.Path, poseInActionSpace common.Posef) (*Space, common.Result, error) {
	if err := a.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}
	if err := session.check(); err != nil {
		return nil, common.ErrorHandleInvalid, err
	}

	info := driver.ActionSpaceCreateInfo{
		Type:              driver.TypeActionSpaceCreateInfo,
		Action:            a.handle,
		SubactionPath:     subactionPath,
		PoseInActionSpace: poseInActionSpace,
	}
	shared := session.shared()
	var handle driver.Space
	res, err := a.driver.XrCreateActionSpace(shared.handle, &info, &handle)
	if err != nil {
		return nil, res, err
	}
	return newSpace(shared, handle), res, nil
}

// SetName attaches a debug name to the action. Requires XR_EXT_debug_utils.
func (a *Action) SetName(name string) (common.Result, error) {
	if err := a.check(); err != nil {
		return common.ErrorHandleInvalid, err
	}
	return a.set.instance.setName(common.ObjectTypeAction, uint64(a.handle), name)
}
