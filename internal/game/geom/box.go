package geom

// Box is an axis-aligned bounding box.
//
// Invariant: Min is component-wise <= Max.
type Box struct {
	Min Vec3
	Max Vec3
}

// BoxAround returns the box centred horizontally on p, resting on p.Y,
// with the given half width/depth and full height.
//
// Precondition: halfWidth, halfDepth, height >= 0.
func BoxAround(p Vec3, halfWidth, height, halfDepth float64) Box {
	return Box{
		Min: Vec3{p.X - halfWidth, p.Y, p.Z - halfDepth},
		Max: Vec3{p.X + halfWidth, p.Y + height, p.Z + halfDepth},
	}
}

// Intersects reports whether b and o overlap on every axis. Touching faces count.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Contains reports whether p lies inside b, inclusive.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Clamp returns p with each axis clamped independently into b.
//
// Postcondition: b.Contains(result); b.Clamp(b.Clamp(p)) == b.Clamp(p).
func (b Box) Clamp(p Vec3) Vec3 {
	return Vec3{
		X: clamp(p.X, b.Min.X, b.Max.X),
		Y: clamp(p.Y, b.Min.Y, b.Max.Y),
		Z: clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
