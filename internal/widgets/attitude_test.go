/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"math"
	"slices"
	"testing"

	"panelforge/internal/component"
	"panelforge/internal/vector"
)

func deg(d float32) float32 { return d * math.Pi / 180 }

func TestAttitudeProjection(t *testing.T) {
	level := newAttitude(0, 0, 0)
	if p, ok := level.project(0, 0, 1.5, 1); !ok || p != (vector.Vec2{}) {
		t.Fatalf("boresight = %v, %v", p, ok)
	}
	if _, ok := level.project(180, 0, 1.5, 1); ok {
		t.Fatalf("point behind the viewer projected")
	}
	if _, ok := level.project(0, 40, 1.5, 1); ok {
		t.Fatalf("point outside the dial projected")
	}
	up := float32(math.Sin(float64(deg(10)))) * 1.5 / 2
	if p, ok := level.project(0, 10, 1.5, 1); !ok || !near(p.X, 0, 1e-5) || !near(p.Y, -up, 1e-5) {
		t.Fatalf("10 deg up = %v, %v, want (0, %v)", p, ok, -up)
	}

	// rolled right by 90 degrees the sky is on the left
	rolled := newAttitude(deg(90), 0, 0)
	if p, ok := rolled.project(0, 10, 1.5, 1); !ok || !near(p.X, -up, 1e-5) || !near(p.Y, 0, 1e-5) {
		t.Fatalf("rolled = %v, %v, want (%v, 0)", p, ok, -up)
	}

	// nose up 10 degrees: the horizon drops, the 10 degree rung is centred
	pitched := newAttitude(0, deg(10), 0)
	if p, ok := pitched.project(0, 0, 1.5, 1); !ok || p.Y <= 0 {
		t.Fatalf("horizon = %v, %v, want below centre", p, ok)
	}
	if p, ok := pitched.project(0, 10, 1.5, 1); !ok || !near(p.X, 0, 1e-5) || !near(p.Y, 0, 1e-5) {
		t.Fatalf("10 deg rung = %v, %v, want centre", p, ok)
	}

	// yawed right by 20 degrees: heading 20 is straight ahead
	yawed := newAttitude(0, 0, deg(20))
	if p, ok := yawed.project(20, 0, 1.5, 1); !ok || !near(p.X, 0, 1e-5) || !near(p.Y, 0, 1e-5) {
		t.Fatalf("heading 20 = %v, %v, want centre", p, ok)
	}
}

func TestSpatialIndicatorDraws(t *testing.T) {
	v, ctx := build(t, `{"type":"SpatialSituationIndicator","name":"ssi"}`)
	d, ok := component.DataOf[SpatialIndicatorData](v, v.Root())
	if !ok || d != (SpatialIndicatorData{ProjectionZoom: 1.5}) {
		t.Fatalf("defaults = %+v", d)
	}
	if g := v.Geometry(v.Root()); !g.HasAspect || g.Aspect != 1 {
		t.Fatalf("geometry = %+v", g)
	}

	canvas := &textCanvas{}
	ctx.SetCanvas(canvas)
	zone := vector.Z(100, 50, 200, 100)
	v.Draw(ctx, zone, nil)
	if got := v.Drawn(v.Root()); got.Size.X < 100 || !near(got.Center.Y, 50, 5) {
		t.Fatalf("drawn = %+v", got)
	}
	for _, want := range []string{"0", "10", "-10", "350"} {
		if !slices.Contains(canvas.texts, want) {
			t.Fatalf("level labels %v missing %q", canvas.texts, want)
		}
	}
	if slices.Contains(canvas.texts, "90") {
		t.Fatalf("90 deg label visible while level: %v", canvas.texts)
	}

	// steep climb: heading ticks every 30 degrees, high rungs come into view
	canvas.texts = nil
	v.Draw(ctx, zone, component.Hooks{"ssi": {"pitch": 1.2}})
	for _, want := range []string{"30", "70"} {
		if !slices.Contains(canvas.texts, want) {
			t.Fatalf("climb labels %v missing %q", canvas.texts, want)
		}
	}
	if slices.Contains(canvas.texts, "10") {
		t.Fatalf("10 deg heading tick drawn while steep: %v", canvas.texts)
	}
	if d, _ := component.DataOf[SpatialIndicatorData](v, v.Root()); d.Pitch != 0 {
		t.Fatalf("hook stored on node: %+v", d)
	}
}
