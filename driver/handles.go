package driver

// Native handles. All of them are 64-bit opaque values; zero is the null
// handle.
type (
	Instance  uint64
	Session   uint64
	Swapchain uint64
	Space     uint64
	ActionSet uint64
	Action    uint64
	SystemID  uint64
	Path      uint64
)

const (
	NullInstance  Instance  = 0
	NullSession   Session   = 0
	NullSwapchain Swapchain = 0
	NullSpace     Space     = 0
	NullActionSet ActionSet = 0
	NullAction    Action    = 0
	NullSystemID  SystemID  = 0
	NullPath      Path      = 0
)
