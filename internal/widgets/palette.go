/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgets

import (
	"encoding/json"
	"fmt"
	"strings"

	"panelforge/internal/vector"
)

// Status classifies a value range.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	}
	return "ok"
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	switch strings.ToLower(str) {
	case "ok":
		*s = StatusOK
	case "warning", "warn":
		*s = StatusWarning
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown status %q", str)
	}
	return nil
}

// Dark palette.
var (
	SoftFront      = vector.RGB(0xa0, 0xa0, 0xa0)
	Front          = vector.RGB(0xff, 0xff, 0xff)
	Caption        = vector.RGB(180, 180, 180)
	Background     = vector.RGB(0, 0, 0)
	SelectionColor = vector.Color{R: 0xff, G: 0xff, B: 0x20, A: 0xa2}
)

// StatusColor is the accent colour of s.
func StatusColor(s Status) vector.Color {
	switch s {
	case StatusWarning:
		return vector.RGB(250, 120, 0)
	case StatusError:
		return vector.RGB(200, 0, 0)
	}
	return vector.RGB(0, 160, 0)
}

// StatusBackground is the fill behind a value in state s.
func StatusBackground(s Status) vector.Color {
	switch s {
	case StatusWarning:
		return vector.RGB(0xbe, 0x55, 0)
	case StatusError:
		return vector.RGB(100, 0, 0)
	}
	return vector.RGB(30, 30, 40)
}

// StatusText is the text colour for a value in state s.
func StatusText(s Status) vector.Color {
	switch s {
	case StatusWarning:
		return vector.RGB(255, 160, 40)
	case StatusError:
		return vector.RGB(255, 60, 60)
	}
	return Front
}
