/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import "errors"

var (
	// ErrUnknownType is returned when a scene names an unregistered tag.
	ErrUnknownType = errors.New("unknown component type")
	// ErrTooManyChildren is returned when a node exceeds MaxChildren.
	ErrTooManyChildren = errors.New("too many children")
	// ErrNoData is returned when a component without defaults gets no
	// usable data.
	ErrNoData    = errors.New("no usable data")
	ErrDataType  = errors.New("data has wrong type")
	ErrNoNode    = errors.New("no such node")
	ErrHasParent = errors.New("node already has a parent")
	ErrNoLayer   = errors.New("no such layer")
)
