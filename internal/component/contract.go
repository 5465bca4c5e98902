/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package component is the scene tree engine: components register under a
// type tag, JSON documents are built into a View of typed nodes, and every
// frame the View is drawn top-down while drawn zones flow back up to the
// layout nodes that asked for them.
package component

import "panelforge/internal/vector"

// NodeID addresses a node inside its View.
type NodeID int

// Unbounded is returned by MaxChildren for containers without a limit.
const Unbounded = -1

// ControlGeometry is what a built node tells its parent about itself.
type ControlGeometry struct {
	Aspect         float32 // width/height, valid when HasAspect
	HasAspect      bool
	SizePreference float32
}

// Free is the geometry of a node that takes whatever it is given.
func Free() ControlGeometry { return ControlGeometry{SizePreference: 1} }

// Fixed is the geometry of a node that wants a specific aspect.
func Fixed(aspect float32) ControlGeometry {
	if aspect <= 0 {
		return Free()
	}
	return ControlGeometry{Aspect: aspect, HasAspect: true, SizePreference: 1}
}

// ChildDrawer draws one child into the offered zone and returns the zone the
// child and its descendants actually covered.
type ChildDrawer func(offered vector.Zone) vector.Zone

// Component is implemented by every widget and layout. P is the public,
// JSON backed data a scene document configures and hooks patch; I is the
// private per-node state created once by Init.
type Component[P, I any] interface {
	Name() string
	// MaxChildren returns the child limit or Unbounded.
	MaxChildren() int
	// DefaultData returns false when the component has no defaults and
	// every node must carry complete data.
	DefaultData() (P, bool)
	// Init runs once per node after its children were built.
	Init(ctx *Context, data *P, children []ControlGeometry) I
	Draw(ctx *Context, zone vector.Zone, children []ChildDrawer, state *I, data *P)
}

// EventHandler is implemented by components reacting to pointer events.
// drawn is the zone the node covered in the last frame.
type EventHandler[P, I any] interface {
	HandleEvent(drawn vector.Zone, ev Event, state *I, data *P)
}

// GeometryReporter is implemented by components that prefer an aspect.
// Without it a node reports Free().
type GeometryReporter[P, I any] interface {
	Geometry(state *I, data *P) ControlGeometry
}
