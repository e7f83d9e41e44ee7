package vehicle

import "math"

// Description holds the body geometry used when drawing the vehicle. It has
// no effect on the dynamics; the model itself is a single-track bicycle.
type Description struct {
	OverallLength float64
	OverallWidth  float64
	TyreDiameter  float64
	TyreWidth     float64
	AxleTrack     float64
	RearOverhang  float64
	Wheelbase     float64
}

// DefaultDescription returns the demo car's body dimensions for the given
// wheelbase, with the rear overhang centring the axles in the body.
func DefaultDescription(wheelbase float64) Description {
	const (
		overallLength = 4.97
		overallWidth  = 1.964
		tyreDiameter  = 0.4826
		tyreWidth     = 0.265
		axleTrack     = 1.7
	)
	return Description{
		OverallLength: overallLength,
		OverallWidth:  overallWidth,
		TyreDiameter:  tyreDiameter,
		TyreWidth:     tyreWidth,
		AxleTrack:     axleTrack,
		RearOverhang:  0.5 * (overallLength - wheelbase),
		Wheelbase:     wheelbase,
	}
}

// Polyline is a closed sequence of world-frame points for plotting.
type Polyline struct {
	X []float64
	Y []float64
}

// Outline returns the body rectangle and the four wheel rectangles for the
// pose (x, y, yaw) with the front wheels turned by steer. The pose point is
// the rear axle centre, matching the model's reference point.
func (d Description) Outline(x, y, yaw, steer float64) (body Polyline, wheels []Polyline) {
	// Body spans from the rear overhang behind the rear axle to the nose.
	body = rectangle(d.OverallLength, d.OverallWidth, d.OverallLength/2-d.RearOverhang, 0, 0)
	body = body.transform(x, y, yaw)

	halfTrack := d.AxleTrack / 2
	wheels = make([]Polyline, 0, 4)
	for _, w := range []struct {
		cx, cy, turn float64
	}{
		{d.Wheelbase, halfTrack, steer},  // front left
		{d.Wheelbase, -halfTrack, steer}, // front right
		{0, halfTrack, 0},                // rear left
		{0, -halfTrack, 0},               // rear right
	} {
		wheel := rectangle(d.TyreDiameter, d.TyreWidth, w.cx, w.cy, w.turn)
		wheels = append(wheels, wheel.transform(x, y, yaw))
	}
	return body, wheels
}

// rectangle builds a closed rectangle of the given length and width centred
// at (cx, cy) in the vehicle frame, rotated by turn about its own centre.
func rectangle(length, width, cx, cy, turn float64) Polyline {
	hl, hw := length/2, width/2
	xs := []float64{-hl, hl, hl, -hl, -hl}
	ys := []float64{-hw, -hw, hw, hw, -hw}

	out := Polyline{X: make([]float64, len(xs)), Y: make([]float64, len(ys))}
	sin, cos := math.Sincos(turn)
	for i := range xs {
		out.X[i] = cx + xs[i]*cos - ys[i]*sin
		out.Y[i] = cy + xs[i]*sin + ys[i]*cos
	}
	return out
}

// transform maps a vehicle-frame polyline into the world frame.
func (p Polyline) transform(x, y, yaw float64) Polyline {
	out := Polyline{X: make([]float64, len(p.X)), Y: make([]float64, len(p.Y))}
	sin, cos := math.Sincos(yaw)
	for i := range p.X {
		out.X[i] = x + p.X[i]*cos - p.Y[i]*sin
		out.Y[i] = y + p.X[i]*sin + p.Y[i]*cos
	}
	return out
}
