/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Resolution independent geometry for panel layout. Coordinates are screen
// space, y grows downwards, float32 to match the canvas backends.

import "math"

// Vec2 is a 2D point or extent.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func V(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(f float32) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float32       { return float32(math.Hypot(float64(v.X), float64(v.Y))) }
func (v Vec2) Polar(r, rad float32) Vec2 {
	return Vec2{
		X: v.X + r*float32(math.Cos(float64(rad))),
		Y: v.Y + r*float32(math.Sin(float64(rad))),
	}
}

// Zone is an axis-aligned rectangle described by its centre and size.
// A zone with zero width and height means nothing was drawn.
type Zone struct {
	Center Vec2 `json:"center"`
	Size   Vec2 `json:"size"`
}

// Z builds a zone from centre and size.
func Z(cx, cy, w, h float32) Zone {
	return Zone{Center: Vec2{cx, cy}, Size: Vec2{abs(w), abs(h)}}
}

// FromRect builds a zone from two opposite corners in any order.
func FromRect(a, b Vec2) Zone {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)
	return Zone{
		Center: Vec2{(minX + maxX) / 2, (minY + maxY) / 2},
		Size:   Vec2{maxX - minX, maxY - minY},
	}
}

func (z Zone) Left() float32   { return z.Center.X - z.Size.X/2 }
func (z Zone) Right() float32  { return z.Center.X + z.Size.X/2 }
func (z Zone) Top() float32    { return z.Center.Y - z.Size.Y/2 }
func (z Zone) Bottom() float32 { return z.Center.Y + z.Size.Y/2 }

func (z Zone) TopLeft() Vec2     { return Vec2{z.Left(), z.Top()} }
func (z Zone) TopRight() Vec2    { return Vec2{z.Right(), z.Top()} }
func (z Zone) BottomLeft() Vec2  { return Vec2{z.Left(), z.Bottom()} }
func (z Zone) BottomRight() Vec2 { return Vec2{z.Right(), z.Bottom()} }

// Aspect is width/height, 0 for zones without height.
func (z Zone) Aspect() float32 {
	if z.Size.Y == 0 {
		return 0
	}
	return z.Size.X / z.Size.Y
}

// IsEmpty reports whether the zone has neither width nor height.
func (z Zone) IsEmpty() bool { return z.Size.X == 0 && z.Size.Y == 0 }

// HasArea reports whether both sides are positive.
func (z Zone) HasArea() bool { return z.Size.X > 0 && z.Size.Y > 0 }

// ConstraintToAspect returns the largest zone with the given aspect centred
// in z. The oversized axis shrinks; a non-positive aspect leaves z unchanged.
func (z Zone) ConstraintToAspect(aspect float32) Zone {
	if aspect <= 0 || !z.HasArea() {
		return z
	}
	out := z
	if z.Aspect() > aspect {
		out.Size.X = z.Size.Y * aspect
	} else {
		out.Size.Y = z.Size.X / aspect
	}
	return out
}

// MergeGrow grows z to the bounding box of z and o. An empty receiver adopts
// o, an empty o leaves z untouched.
func (z *Zone) MergeGrow(o Zone) {
	if o.IsEmpty() {
		return
	}
	if z.IsEmpty() {
		*z = o
		return
	}
	*z = FromRect(
		Vec2{min(z.Left(), o.Left()), min(z.Top(), o.Top())},
		Vec2{max(z.Right(), o.Right()), max(z.Bottom(), o.Bottom())},
	)
}

// Merge is the value form of MergeGrow.
func Merge(a, b Zone) Zone {
	a.MergeGrow(b)
	return a
}

// Scale resizes the zone by f around its centre.
func (z Zone) Scale(f float32) Zone {
	if f < 0 {
		f = 0
	}
	return Zone{Center: z.Center, Size: z.Size.Mul(f)}
}

// Shrink removes d from every side, clamping at zero size.
func (z Zone) Shrink(d float32) Zone {
	return Zone{Center: z.Center, Size: Vec2{max(0, z.Size.X-2*d), max(0, z.Size.Y-2*d)}}
}

// Offset moves the zone by d.
func (z Zone) Offset(d Vec2) Zone { return Zone{Center: z.Center.Add(d), Size: z.Size} }

// Contains is inclusive on all edges.
func (z Zone) Contains(p Vec2) bool {
	return p.X >= z.Left() && p.X <= z.Right() && p.Y >= z.Top() && p.Y <= z.Bottom()
}

// SliceX returns the vertical strip between fractions a and b of the width.
func (z Zone) SliceX(a, b float32) Zone {
	l := z.Left() + z.Size.X*a
	r := z.Left() + z.Size.X*b
	return FromRect(Vec2{l, z.Top()}, Vec2{r, z.Bottom()})
}

// SliceY returns the horizontal strip between fractions a and b of the height.
func (z Zone) SliceY(a, b float32) Zone {
	t := z.Top() + z.Size.Y*a
	bt := z.Top() + z.Size.Y*b
	return FromRect(Vec2{z.Left(), t}, Vec2{z.Right(), bt})
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
