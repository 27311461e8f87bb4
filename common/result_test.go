package common_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/openxr/common"
)

func TestResult_ToError(t *testing.T) {
	require.NoError(t, common.Success.ToError())
	require.NoError(t, common.TimeoutExpired.ToError())
	require.NoError(t, common.FrameDiscarded.ToError())

	err := common.ErrorCallOrderInvalid.ToError()
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrorCallOrderInvalid))
	require.False(t, errors.Is(err, common.ErrorSessionLost))

	wrapped := errors.Wrap(err, "wait frame")
	res, ok := common.ResultFromError(wrapped)
	require.True(t, ok)
	require.Equal(t, common.ErrorCallOrderInvalid, res)
	require.Contains(t, wrapped.Error(), "XR_ERROR_CALL_ORDER_INVALID")
}

func TestResult_String(t *testing.T) {
	require.Equal(t, "XR_ERROR_SIZE_INSUFFICIENT", common.ErrorSizeInsufficient.String())
	require.Equal(t, "XR_UNKNOWN_FAILURE_999", common.Result(-999).String())
	require.Equal(t, "XR_UNKNOWN_SUCCESS_42", common.Result(42).String())
}

func TestResultFromError_Foreign(t *testing.T) {
	_, ok := common.ResultFromError(errors.New("not native"))
	require.False(t, ok)
}

func TestVersion(t *testing.T) {
	v := common.MakeVersion(1, 0, 34)
	require.Equal(t, uint32(1), v.Major())
	require.Equal(t, uint32(0), v.Minor())
	require.Equal(t, uint32(34), v.Patch())
	require.Equal(t, "1.0.34", v.String())
	require.Equal(t, common.Version(0x0001000000000022), v)
	require.True(t, common.MakeVersion(1, 1, 0).IsAtLeast(v))
}

func TestPosef_Matrix(t *testing.T) {
	pose := common.IdentityPose()
	pose.Position = common.Vector3f{X: 1, Y: 2, Z: 3}

	m := pose.Matrix()
	require.True(t, m.Col(3).ApproxEqual(mgl32.Vec4{1, 2, 3, 1}))

	origin := pose.ViewMatrix().Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	require.True(t, origin.ApproxEqual(mgl32.Vec4{0, 0, 0, 1}))
}

func TestQuaternionf_RoundTripThroughMgl(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	back := common.QuaternionfFromMgl(q).Mgl()
	require.True(t, q.ApproxEqual(back))
}

func TestFovf_ProjectionSymmetric(t *testing.T) {
	fov := common.Fovf{
		AngleLeft:  -mgl32.DegToRad(45),
		AngleRight: mgl32.DegToRad(45),
		AngleUp:    mgl32.DegToRad(45),
		AngleDown:  -mgl32.DegToRad(45),
	}
	got := fov.Projection(0.1, 100)
	want := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	require.True(t, got.ApproxEqualThreshold(want, 1e-4))
}
