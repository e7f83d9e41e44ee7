package vehicle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDescription(t *testing.T) {
	t.Parallel()

	d := DefaultDescription(2.96)
	assert.InDelta(t, 2.96, d.Wheelbase, 1e-12)
	assert.InDelta(t, 0.5*(4.97-2.96), d.RearOverhang, 1e-12)
	assert.InDelta(t, 4.97, d.OverallLength, 1e-12)
}

func TestOutlineIdentityPose(t *testing.T) {
	t.Parallel()

	d := DefaultDescription(2.96)
	body, wheels := d.Outline(0, 0, 0, 0)

	require.Len(t, body.X, 5)
	require.Len(t, wheels, 4)

	// The body is closed and spans from -RearOverhang behind the rear axle
	// to the nose at OverallLength-RearOverhang.
	assert.InDelta(t, body.X[0], body.X[4], 1e-12)
	assert.InDelta(t, body.Y[0], body.Y[4], 1e-12)
	minX, maxX := body.X[0], body.X[0]
	for _, x := range body.X {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	assert.InDelta(t, -d.RearOverhang, minX, 1e-12)
	assert.InDelta(t, d.OverallLength-d.RearOverhang, maxX, 1e-12)

	// Rear wheels are centred on the rear axle, front wheels on the front.
	centre := func(p Polyline) (float64, float64) {
		var sx, sy float64
		for i := 0; i < 4; i++ {
			sx += p.X[i]
			sy += p.Y[i]
		}
		return sx / 4, sy / 4
	}
	fx, fy := centre(wheels[0])
	assert.InDelta(t, d.Wheelbase, fx, 1e-12)
	assert.InDelta(t, d.AxleTrack/2, fy, 1e-12)
	rx, ry := centre(wheels[3])
	assert.InDelta(t, 0.0, rx, 1e-12)
	assert.InDelta(t, -d.AxleTrack/2, ry, 1e-12)
}

func TestOutlineTransformPreservesShape(t *testing.T) {
	t.Parallel()

	d := DefaultDescription(2.96)
	body, _ := d.Outline(12, -7, math.Pi/3, 0.2)

	// Rigid transforms preserve edge lengths.
	edge := func(p Polyline, i int) float64 {
		return math.Hypot(p.X[i+1]-p.X[i], p.Y[i+1]-p.Y[i])
	}
	assert.InDelta(t, d.OverallLength, edge(body, 0), 1e-12)
	assert.InDelta(t, d.OverallWidth, edge(body, 1), 1e-12)
	assert.InDelta(t, d.OverallLength, edge(body, 2), 1e-12)
	assert.InDelta(t, d.OverallWidth, edge(body, 3), 1e-12)
}

func TestOutlineSteerTurnsFrontWheelsOnly(t *testing.T) {
	t.Parallel()

	d := DefaultDescription(2.96)
	_, straight := d.Outline(0, 0, 0, 0)
	_, steered := d.Outline(0, 0, 0, 0.4)

	// Front wheel corners move when steered; rear wheels do not.
	assert.Greater(t, math.Abs(steered[0].X[0]-straight[0].X[0]), 1e-6)
	assert.InDelta(t, straight[2].X[0], steered[2].X[0], 1e-12)
	assert.InDelta(t, straight[3].Y[0], steered[3].Y[0], 1e-12)
}
