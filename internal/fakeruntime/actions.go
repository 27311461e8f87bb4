package fakeruntime

import (
	"slices"
	"strings"
	"unicode"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/openxr/common"
	"github.com/vkngwrapper/openxr/driver"
)

// SimpleController is the interaction profile every hand reports once action
// sets are attached.
const SimpleController = "/interaction_profiles/khr/simple_controller"

type actionSetState struct {
	handle    driver.ActionSet
	instance  *instanceState
	destroyed bool
	attached  bool

	name      string
	localized string
	priority  uint32

	actions   map[string]driver.Action
	localizes map[string]bool
}

type actionValue struct {
	boolean bool
	float   float32
	vector  common.Vector2f
}

type actionState struct {
	handle     driver.Action
	set        *actionSetState
	destroyed  bool
	name       string
	localized  string
	actionType common.ActionType
	subactions []driver.Path

	pending    actionValue
	current    actionValue
	changed    bool
	active     bool
	lastChange common.Time
}

func (a *actionState) hasSubaction(path driver.Path) bool {
	return slices.Contains(a.subactions, path)
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	return true
}

// SetActionState sets the value an action reports after the next successful
// sync. value must be a bool, float32 or common.Vector2f matching the
// action's type.
func (r *Runtime) SetActionState(action driver.Action, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.actions[action]
	if a == nil || a.destroyed {
		return errors.Newf("unknown action %d", action)
	}

	switch v := value.(type) {
	case bool:
		if a.actionType != common.ActionTypeBooleanInput {
			return errors.Newf("action %q is %s, not boolean", a.name, a.actionType)
		}
		a.pending.boolean = v
	case float32:
		if a.actionType != common.ActionTypeFloatInput {
			return errors.Newf("action %q is %s, not float", a.name, a.actionType)
		}
		a.pending.float = v
	case common.Vector2f:
		if a.actionType != common.ActionTypeVector2fInput {
			return errors.Newf("action %q is %s, not vector2f", a.name, a.actionType)
		}
		a.pending.vector = v
	default:
		return errors.Newf("unsupported action value %T", value)
	}
	return nil
}

func (d *instanceDriver) XrCreateActionSet(createInfo *driver.ActionSetCreateInfo, actionSet *driver.ActionSet) (common.Result, error) {
	state := d.enter("xrCreateActionSet")
	defer d.leave()
	if state == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeActionSetCreateInfo {
		return result(common.ErrorValidationFailure)
	}

	name := fixedString(createInfo.ActionSetName[:])
	localized := fixedString(createInfo.LocalizedActionSetName[:])
	if !validName(name) {
		return result(common.ErrorNameInvalid)
	}
	if localized == "" {
		return result(common.ErrorLocalizedNameInvalid)
	}
	if _, ok := state.actionSets[name]; ok {
		return result(common.ErrorNameDuplicated)
	}
	for _, set := range state.actionSets {
		if d.r.actionSets[set].localized == localized {
			return result(common.ErrorLocalizedNameDuplicated)
		}
	}

	set := &actionSetState{
		handle:    driver.ActionSet(d.r.handle()),
		instance:  state,
		name:      name,
		localized: localized,
		priority:  createInfo.Priority,
		actions:   map[string]driver.Action{},
		localizes: map[string]bool{},
	}
	d.r.actionSets[set.handle] = set
	state.actionSets[name] = set.handle
	d.r.counters.ActionSetsCreated++
	*actionSet = set.handle
	return result(common.Success)
}

func (d *instanceDriver) actionSet(handle driver.ActionSet) *actionSetState {
	set := d.r.actionSets[handle]
	if set == nil || set.destroyed || set.instance.handle != d.instance {
		return nil
	}
	return set
}

func (d *instanceDriver) XrDestroyActionSet(actionSet driver.ActionSet) (common.Result, error) {
	state := d.enter("xrDestroyActionSet")
	defer d.leave()
	set := d.actionSet(actionSet)
	if state == nil || set == nil {
		return result(common.ErrorHandleInvalid)
	}

	// Destroying a set destroys its actions too.
	for _, handle := range set.actions {
		if a := d.r.actions[handle]; a != nil && !a.destroyed {
			a.destroyed = true
			d.r.counters.ActionsDestroyed++
		}
	}
	set.destroyed = true
	delete(state.actionSets, set.name)
	d.r.counters.ActionSetsDestroyed++
	return result(common.Success)
}

func (d *instanceDriver) XrCreateAction(actionSet driver.ActionSet, createInfo *driver.ActionCreateInfo, action *driver.Action) (common.Result, error) {
	state := d.enter("xrCreateAction")
	defer d.leave()
	set := d.actionSet(actionSet)
	if state == nil || set == nil {
		return result(common.ErrorHandleInvalid)
	}
	if createInfo.Type != driver.TypeActionCreateInfo {
		return result(common.ErrorValidationFailure)
	}
	if set.attached {
		return result(common.ErrorActionSetsAlreadyAttached)
	}

	name := fixedString(createInfo.ActionName[:])
	localized := fixedString(createInfo.LocalizedActionName[:])
	if !validName(name) {
		return result(common.ErrorNameInvalid)
	}
	if localized == "" {
		return result(common.ErrorLocalizedNameInvalid)
	}
	if _, ok := set.actions[name]; ok {
		return result(common.ErrorNameDuplicated)
	}
	if set.localizes[localized] {
		return result(common.ErrorLocalizedNameDuplicated)
	}
	switch createInfo.ActionType {
	case common.ActionTypeBooleanInput, common.ActionTypeFloatInput, common.ActionTypeVector2fInput,
		common.ActionTypePoseInput, common.ActionTypeVibrationOutput:
	default:
		return result(common.ErrorValidationFailure)
	}

	var subactions []driver.Path
	if createInfo.CountSubactionPaths > 0 {
		subactions = slices.Clone(unsafe.Slice(createInfo.SubactionPaths, createInfo.CountSubactionPaths))
	}
	for i, path := range subactions {
		s, ok := d.r.pathString(path)
		if !ok {
			return result(common.ErrorPathInvalid)
		}
		if !strings.HasPrefix(s, "/user/") {
			return result(common.ErrorPathUnsupported)
		}
		if slices.Contains(subactions[:i], path) {
			return result(common.ErrorPathUnsupported)
		}
	}

	a := &actionState{
		handle:     driver.Action(d.r.handle()),
		set:        set,
		name:       name,
		localized:  localized,
		actionType: createInfo.ActionType,
		subactions: subactions,
	}
	d.r.actions[a.handle] = a
	set.actions[name] = a.handle
	set.localizes[localized] = true
	d.r.counters.ActionsCreated++
	*action = a.handle
	return result(common.Success)
}

func (d *instanceDriver) XrDestroyAction(action driver.Action) (common.Result, error) {
	state := d.enter("xrDestroyAction")
	defer d.leave()
	a := d.r.actions[action]
	if state == nil || a == nil || a.destroyed || a.set.instance != state {
		return result(common.ErrorHandleInvalid)
	}
	a.destroyed = true
	delete(a.set.actions, a.name)
	delete(a.set.localizes, a.localized)
	d.r.counters.ActionsDestroyed++
	return result(common.Success)
}

func (d *instanceDriver) XrAttachSessionActionSets(session driver.Session, attachInfo *driver.SessionActionSetsAttachInfo) (common.Result, error) {
	state := d.enter("xrAttachSessionActionSets")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if attachInfo.Type != driver.TypeSessionActionSetsAttachInfo || attachInfo.CountActionSets == 0 {
		return result(common.ErrorValidationFailure)
	}
	if len(s.attached) > 0 {
		return result(common.ErrorActionSetsAlreadyAttached)
	}

	handles := unsafe.Slice(attachInfo.ActionSets, attachInfo.CountActionSets)
	for _, handle := range handles {
		if d.actionSet(handle) == nil {
			return result(common.ErrorHandleInvalid)
		}
	}
	for _, handle := range handles {
		d.r.actionSets[handle].attached = true
		s.attached[handle] = true
	}

	// Attaching binds the suggested profile, which the application learns
	// about through an event.
	event := driver.EventDataInteractionProfileChanged{
		Type:    driver.TypeEventDataInteractionProfileChange,
		Session: s.handle,
	}
	state.push(func(buf *driver.EventDataBuffer) {
		*(*driver.EventDataInteractionProfileChanged)(unsafe.Pointer(buf)) = event
	})
	return result(common.Success)
}

func (d *instanceDriver) XrSyncActions(session driver.Session, syncInfo *driver.ActionsSyncInfo) (common.Result, error) {
	state := d.enter("xrSyncActions")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if syncInfo.Type != driver.TypeActionsSyncInfo {
		return result(common.ErrorValidationFailure)
	}

	var active []driver.ActiveActionSet
	if syncInfo.CountActiveActionSets > 0 {
		active = unsafe.Slice(syncInfo.ActiveActionSets, syncInfo.CountActiveActionSets)
	}
	for _, set := range active {
		if d.actionSet(set.ActionSet) == nil {
			return result(common.ErrorHandleInvalid)
		}
		if !s.attached[set.ActionSet] {
			return result(common.ErrorActionSetNotAttached)
		}
		if set.SubactionPath != driver.NullPath {
			if _, ok := d.r.pathString(set.SubactionPath); !ok {
				return result(common.ErrorPathInvalid)
			}
		}
	}

	focused := s.state == common.SessionStateFocused
	d.r.counters.ActionSyncs++
	for _, a := range d.r.actions {
		if a.destroyed || !s.attached[a.set.handle] {
			continue
		}
		synced := focused && slices.ContainsFunc(active, func(set driver.ActiveActionSet) bool {
			return set.ActionSet == a.set.handle
		})
		if !synced {
			a.active = false
			a.changed = false
			continue
		}
		a.changed = a.active && a.pending != a.current
		if a.changed {
			a.lastChange = s.now
		}
		a.current = a.pending
		a.active = true
	}
	if !focused {
		return result(common.SessionNotFocused)
	}
	return result(common.Success)
}

// actionFor resolves the action of a state query and checks it against the
// session and the expected type.
func (d *instanceDriver) actionFor(s *sessionState, getInfo *driver.ActionStateGetInfo, want common.ActionType) (*actionState, common.Result) {
	if getInfo.Type != driver.TypeActionStateGetInfo {
		return nil, common.ErrorValidationFailure
	}
	a := d.r.actions[getInfo.Action]
	if a == nil || a.destroyed || a.set.instance != s.instance {
		return nil, common.ErrorHandleInvalid
	}
	if !s.attached[a.set.handle] {
		return nil, common.ErrorActionSetNotAttached
	}
	if a.actionType != want {
		return nil, common.ErrorActionTypeMismatch
	}
	if getInfo.SubactionPath != driver.NullPath && !a.hasSubaction(getInfo.SubactionPath) {
		return nil, common.ErrorPathUnsupported
	}
	return a, common.Success
}

func (d *instanceDriver) XrGetActionStateBoolean(session driver.Session, getInfo *driver.ActionStateGetInfo, state *driver.ActionStateBoolean) (common.Result, error) {
	instance := d.enter("xrGetActionStateBoolean")
	defer d.leave()
	s := d.session(session)
	if instance == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if state.Type != driver.TypeActionStateBoolean {
		return result(common.ErrorValidationFailure)
	}
	a, res := d.actionFor(s, getInfo, common.ActionTypeBooleanInput)
	if res != common.Success {
		return result(res)
	}

	state.CurrentState = common.BoolToBool32(a.active && a.current.boolean)
	state.ChangedSinceLastSync = common.BoolToBool32(a.changed)
	state.LastChangeTime = a.lastChange
	state.IsActive = common.BoolToBool32(a.active)
	return result(common.Success)
}

func (d *instanceDriver) XrGetActionStateFloat(session driver.Session, getInfo *driver.ActionStateGetInfo, state *driver.ActionStateFloat) (common.Result, error) {
	instance := d.enter("xrGetActionStateFloat")
	defer d.leave()
	s := d.session(session)
	if instance == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if state.Type != driver.TypeActionStateFloat {
		return result(common.ErrorValidationFailure)
	}
	a, res := d.actionFor(s, getInfo, common.ActionTypeFloatInput)
	if res != common.Success {
		return result(res)
	}

	state.CurrentState = 0
	if a.active {
		state.CurrentState = a.current.float
	}
	state.ChangedSinceLastSync = common.BoolToBool32(a.changed)
	state.LastChangeTime = a.lastChange
	state.IsActive = common.BoolToBool32(a.active)
	return result(common.Success)
}

func (d *instanceDriver) XrGetActionStateVector2f(session driver.Session, getInfo *driver.ActionStateGetInfo, state *driver.ActionStateVector2f) (common.Result, error) {
	instance := d.enter("xrGetActionStateVector2f")
	defer d.leave()
	s := d.session(session)
	if instance == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if state.Type != driver.TypeActionStateVector2f {
		return result(common.ErrorValidationFailure)
	}
	a, res := d.actionFor(s, getInfo, common.ActionTypeVector2fInput)
	if res != common.Success {
		return result(res)
	}

	state.CurrentState = common.Vector2f{}
	if a.active {
		state.CurrentState = a.current.vector
	}
	state.ChangedSinceLastSync = common.BoolToBool32(a.changed)
	state.LastChangeTime = a.lastChange
	state.IsActive = common.BoolToBool32(a.active)
	return result(common.Success)
}

func (d *instanceDriver) XrGetActionStatePose(session driver.Session, getInfo *driver.ActionStateGetInfo, state *driver.ActionStatePose) (common.Result, error) {
	instance := d.enter("xrGetActionStatePose")
	defer d.leave()
	s := d.session(session)
	if instance == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if state.Type != driver.TypeActionStatePose {
		return result(common.ErrorValidationFailure)
	}
	a, res := d.actionFor(s, getInfo, common.ActionTypePoseInput)
	if res != common.Success {
		return result(res)
	}
	state.IsActive = common.BoolToBool32(a.active)
	return result(common.Success)
}

func (d *instanceDriver) XrGetCurrentInteractionProfile(session driver.Session, topLevelUserPath driver.Path, profile *driver.InteractionProfileState) (common.Result, error) {
	state := d.enter("xrGetCurrentInteractionProfile")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if profile.Type != driver.TypeInteractionProfileState {
		return result(common.ErrorValidationFailure)
	}
	if len(s.attached) == 0 {
		return result(common.ErrorActionSetNotAttached)
	}
	user, ok := d.r.pathString(topLevelUserPath)
	if !ok {
		return result(common.ErrorPathInvalid)
	}

	profile.InteractionProfile = driver.NullPath
	switch user {
	case "/user/hand/left", "/user/hand/right":
		profile.InteractionProfile = d.r.intern(SimpleController)
	case "/user/head", "/user/gamepad":
	default:
		return result(common.ErrorPathUnsupported)
	}
	return result(common.Success)
}

func (d *instanceDriver) XrGetInputSourceLocalizedName(session driver.Session, getInfo *driver.InputSourceLocalizedNameGetInfo, capacity uint32, count *uint32, buffer *byte) (common.Result, error) {
	state := d.enter("xrGetInputSourceLocalizedName")
	defer d.leave()
	s := d.session(session)
	if state == nil || s == nil {
		return result(common.ErrorHandleInvalid)
	}
	if getInfo.Type != driver.TypeInputSourceLocalizedNameGetInfo || getInfo.WhichComponents == 0 {
		return result(common.ErrorValidationFailure)
	}
	if len(s.attached) == 0 {
		return result(common.ErrorActionSetNotAttached)
	}
	source, ok := d.r.pathString(getInfo.SourcePath)
	if !ok {
		return result(common.ErrorPathInvalid)
	}
	if !strings.HasPrefix(source, "/user/") {
		return result(common.ErrorPathUnsupported)
	}

	if name, ok := d.r.opts.LocalizedNames[source]; ok {
		return result(fillString(name, capacity, count, buffer))
	}
	return result(fillString(localizedName(source, getInfo.WhichComponents), capacity, count, buffer))
}

// localizedName builds a readable name out of the parts of an input source
// path, as in "Left Hand Simple Controller Select Click".
func localizedName(source string, components uint64) string {
	parts := strings.Split(strings.TrimPrefix(source, "/user/"), "/")
	var words []string
	if components&driver.InputSourceLocalizedNameUserPath != 0 {
		user := slices.Clone(parts)
		if i := slices.Index(user, "input"); i >= 0 {
			user = user[:i]
		}
		slices.Reverse(user)
		words = append(words, titleWords(user)...)
	}
	if components&driver.InputSourceLocalizedNameInteractionProfile != 0 {
		words = append(words, "Simple", "Controller")
	}
	if components&driver.InputSourceLocalizedNameComponent != 0 {
		if i := slices.Index(parts, "input"); i >= 0 {
			words = append(words, titleWords(parts[i+1:])...)
		}
	}
	return strings.Join(words, " ")
}

func titleWords(parts []string) []string {
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, word := range strings.Split(part, "_") {
			if word == "" {
				continue
			}
			r := []rune(word)
			r[0] = unicode.ToUpper(r[0])
			words = append(words, string(r))
		}
	}
	return words
}
