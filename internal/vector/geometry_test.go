/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"encoding/json"
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func TestFromRectNormalisesCorners(t *testing.T) {
	z := FromRect(V(110, 20), V(10, 70))
	if z.Center != V(60, 45) || z.Size != V(100, 50) {
		t.Fatalf("unexpected zone: %+v", z)
	}
	if z.Left() != 10 || z.Right() != 110 || z.Top() != 20 || z.Bottom() != 70 {
		t.Fatalf("unexpected edges: l=%v r=%v t=%v b=%v", z.Left(), z.Right(), z.Top(), z.Bottom())
	}
	if z.Aspect() != 2 {
		t.Fatalf("aspect = %v, want 2", z.Aspect())
	}
	if (Zone{Size: V(10, 0)}).Aspect() != 0 {
		t.Fatalf("zero height must give aspect 0")
	}
}

func TestConstraintToAspect(t *testing.T) {
	cases := []struct {
		name   string
		z      Zone
		aspect float32
	}{
		{"wide to square", Z(50, 50, 200, 100), 1},
		{"tall to wide", Z(0, 0, 40, 300), 3},
		{"square to tall", Z(10, -10, 80, 80), 0.25},
		{"already matching", Z(5, 5, 30, 15), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.z.ConstraintToAspect(tc.aspect)
			if got.Center != tc.z.Center {
				t.Fatalf("centre moved: %+v -> %+v", tc.z.Center, got.Center)
			}
			if !near(got.Aspect(), tc.aspect) {
				t.Fatalf("aspect = %v, want %v", got.Aspect(), tc.aspect)
			}
			if got.Size.X > tc.z.Size.X+1e-4 || got.Size.Y > tc.z.Size.Y+1e-4 {
				t.Fatalf("result %+v does not fit in %+v", got.Size, tc.z.Size)
			}
			if !near(got.Size.X, tc.z.Size.X) && !near(got.Size.Y, tc.z.Size.Y) {
				t.Fatalf("result %+v touches neither axis of %+v", got.Size, tc.z.Size)
			}
		})
	}
	z := Z(1, 2, 3, 4)
	if z.ConstraintToAspect(0) != z || z.ConstraintToAspect(-1) != z {
		t.Fatalf("non-positive aspect must leave the zone unchanged")
	}
}

func TestMergeGrow(t *testing.T) {
	var acc Zone
	acc.MergeGrow(Zone{})
	if !acc.IsEmpty() {
		t.Fatalf("merging empty into empty must stay empty: %+v", acc)
	}
	acc.MergeGrow(FromRect(V(0, 0), V(10, 10)))
	acc.MergeGrow(FromRect(V(20, 5), V(30, 40)))
	want := FromRect(V(0, 0), V(30, 40))
	if acc != want {
		t.Fatalf("merge = %+v, want %+v", acc, want)
	}
	acc.MergeGrow(Zone{Center: V(1000, 1000)})
	if acc != want {
		t.Fatalf("empty zone must not grow the box: %+v", acc)
	}
	if Merge(Zone{}, want) != want {
		t.Fatalf("Merge with empty receiver should adopt other")
	}
}

func TestContainsScaleShrink(t *testing.T) {
	z := Z(100, 100, 50, 50)
	if !z.Contains(V(120, 110)) || !z.Contains(V(125, 75)) {
		t.Fatalf("expected inside and edge points to be contained")
	}
	if z.Contains(V(200, 200)) {
		t.Fatalf("far point should not be contained")
	}
	if s := z.Scale(0.5); s.Center != z.Center || s.Size != V(25, 25) {
		t.Fatalf("unexpected scale: %+v", s)
	}
	if s := z.Shrink(30); s.Size != V(0, 0) {
		t.Fatalf("shrink must clamp at zero: %+v", s)
	}
	left := Z(50, 20, 100, 40).SliceX(0, 0.25)
	if left.Left() != 0 || left.Right() != 25 || left.Size.Y != 40 {
		t.Fatalf("unexpected slice: %+v", left)
	}
}

func TestColorParseAndJSON(t *testing.T) {
	for in, want := range map[string]Color{
		"#808080":  RGB(128, 128, 128),
		"#000060":  RGB(0, 0, 0x60),
		"#fff":     White,
		"11223344": {0x11, 0x22, 0x33, 0x44},
	} {
		got, err := ParseHex(in)
		if err != nil || got != want {
			t.Fatalf("ParseHex(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseHex("#12345"); err == nil {
		t.Fatalf("expected error for 5 digit colour")
	}

	var c struct {
		Front Color `json:"front"`
		Back  Color `json:"back"`
	}
	if err := json.Unmarshal([]byte(`{"front":"#ff0000","back":[0,0,96]}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Front != RGB(255, 0, 0) || c.Back != RGB(0, 0, 96) {
		t.Fatalf("unexpected colours: %+v", c)
	}
	if err := json.Unmarshal([]byte(`{"front":12}`), &c); err == nil {
		t.Fatalf("expected error for numeric colour")
	}
	b, _ := json.Marshal(c)
	if string(b) != `{"front":"#ff0000","back":"#000060"}` {
		t.Fatalf("marshal = %s", b)
	}
}

func TestRecorderTracksBounds(t *testing.T) {
	r := &Recorder{Inner: Nop{}}
	r.FillRect(Z(10, 10, 4, 4), Black)
	r.FillCircle(V(30, 10), 2, White)
	r.Line(V(10, 30), V(30, 30), Stroke{Color: Black, Width: 1})
	if r.Ops != 3 {
		t.Fatalf("ops = %d, want 3", r.Ops)
	}
	want := FromRect(V(8, 8), V(32, 30))
	if r.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", r.Bounds, want)
	}
}
