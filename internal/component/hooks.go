/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"encoding/json"
	"fmt"
)

// Hooks maps a node name to property overrides for one frame.
type Hooks map[string]map[string]any

// Set records one override, creating the component entry on demand.
func (h Hooks) Set(component, property string, value any) {
	props, ok := h[component]
	if !ok {
		props = make(map[string]any)
		h[component] = props
	}
	props[property] = value
}

// Merge copies every override of o into h; o wins on conflicts.
func (h Hooks) Merge(o Hooks) {
	for c, props := range o {
		for k, v := range props {
			h.Set(c, k, v)
		}
	}
}

// JoinHooks returns value with the named top-level fields replaced by the
// hook values. The value goes through JSON: marshal, patch the object,
// decode into a fresh P. Unknown fields are ignored. A value that does not
// decode into its field's type makes the merge fail; the original value is
// returned alongside the error.
func JoinHooks[P any](value P, props map[string]any) (P, error) {
	if len(props) == 0 {
		return value, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("join hooks: marshal: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return value, fmt.Errorf("join hooks: data is not an object: %w", err)
	}
	if obj == nil {
		obj = make(map[string]json.RawMessage, len(props))
	}
	for k, hv := range props {
		rb, err := json.Marshal(hv)
		if err != nil {
			return value, fmt.Errorf("join hooks: %s: %w", k, err)
		}
		obj[k] = rb
	}
	patched, err := json.Marshal(obj)
	if err != nil {
		return value, fmt.Errorf("join hooks: %w", err)
	}
	var out P
	if err := json.Unmarshal(patched, &out); err != nil {
		return value, fmt.Errorf("join hooks: %w", err)
	}
	return out, nil
}
