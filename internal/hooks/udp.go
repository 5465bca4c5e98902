/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package hooks

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"panelforge/internal/component"
	applog "panelforge/internal/log"
)

// X-Plane DATA packets: "DATA", one pad byte, then records of a
// little-endian int32 group index followed by eight little-endian float32.
const (
	dataHeader     = "DATA"
	dataPrefixLen  = 5
	slotsPerRecord = 8
	recordLen      = 4 + slotsPerRecord*4
	// unusedValue marks slots the simulator does not fill.
	unusedValue = -999
)

var ErrNotDATA = errors.New("not a DATA packet")

// Channel addresses one value of a DATA packet.
type Channel struct {
	Group int
	Slot  int
}

func (c Channel) String() string { return fmt.Sprintf("%d.%d", c.Group, c.Slot) }

// DecodeDATA returns the values of every complete record in b. A trailing
// partial record is ignored.
func DecodeDATA(b []byte) (map[Channel]float32, error) {
	if len(b) < dataPrefixLen || string(b[:4]) != dataHeader {
		return nil, ErrNotDATA
	}
	body := b[dataPrefixLen:]
	if len(body) < recordLen {
		return nil, fmt.Errorf("%w: no complete record in %d bytes", ErrNotDATA, len(b))
	}
	out := make(map[Channel]float32, len(body)/recordLen*slotsPerRecord)
	for ; len(body) >= recordLen; body = body[recordLen:] {
		group := int(int32(binary.LittleEndian.Uint32(body)))
		for i := 0; i < slotsPerRecord; i++ {
			off := 4 + i*4
			out[Channel{group, i}] = math.Float32frombits(binary.LittleEndian.Uint32(body[off:]))
		}
	}
	return out, nil
}

// EncodeDATA builds a DATA packet; groups maps a group index to its eight
// values. Used by tests and simulators.
func EncodeDATA(groups map[int][slotsPerRecord]float32) []byte {
	b := make([]byte, dataPrefixLen, dataPrefixLen+len(groups)*recordLen)
	copy(b, dataHeader)
	var rec [recordLen]byte
	for g, vals := range groups {
		binary.LittleEndian.PutUint32(rec[:], uint32(int32(g)))
		for i, v := range vals {
			binary.LittleEndian.PutUint32(rec[4+i*4:], math.Float32bits(v))
		}
		b = append(b, rec[:]...)
	}
	return b
}

// Mapping routes one channel to a component property, scaled.
type Mapping struct {
	Channel
	Component string
	Property  string
	Scale     float64
}

// mapping lines look like "13.4 = flaps.value * 40"
var reMapping = regexp.MustCompile(`^(\d+)\.([0-7])\s*=\s*([A-Za-z0-9_\-]+)\.([A-Za-z0-9_]+)(?:\s*([*/])\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?))?$`)

// ParseMappings reads one mapping per line. Blank lines and lines starting
// with '#' are skipped. All malformed lines are reported together.
func ParseMappings(input string) ([]Mapping, error) {
	var out []Mapping
	var errs []error
	sc := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := reMapping.FindStringSubmatch(line)
		if m == nil {
			errs = append(errs, fmt.Errorf("line %d: cannot parse %q", lineNo, line))
			continue
		}
		group, _ := strconv.Atoi(m[1])
		slot, _ := strconv.Atoi(m[2])
		mp := Mapping{Channel: Channel{group, slot}, Component: m[3], Property: m[4], Scale: 1}
		if m[5] != "" {
			f, err := strconv.ParseFloat(m[6], 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
				continue
			}
			if m[5] == "/" {
				if f == 0 {
					errs = append(errs, fmt.Errorf("line %d: division by zero", lineNo))
					continue
				}
				f = 1 / f
			}
			mp.Scale = f
		}
		out = append(out, mp)
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, err)
	}
	return out, errors.Join(errs...)
}

// UDPSource listens for DATA packets and keeps the latest value of every
// channel. Hooks maps the channels seen so far through the mappings.
type UDPSource struct {
	conn     net.PacketConn
	mappings []Mapping
	log      *slog.Logger

	mu      sync.Mutex
	values  map[Channel]float32
	packets uint64
	dropped uint64
}

// ListenUDP binds addr ("host:port").
func ListenUDP(addr string, mappings []Mapping) (*UDPSource, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &UDPSource{
		conn:     conn,
		mappings: mappings,
		log:      applog.WithComponent("hooks").With(slog.String("source", "udp"), slog.String("addr", conn.LocalAddr().String())),
		values:   make(map[Channel]float32),
	}, nil
}

// Addr is the bound local address.
func (u *UDPSource) Addr() net.Addr { return u.conn.LocalAddr() }

// Close stops Run and releases the socket.
func (u *UDPSource) Close() error { return u.conn.Close() }

// Stats returns the number of accepted and rejected packets.
func (u *UDPSource) Stats() (packets, dropped uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.packets, u.dropped
}

// Run reads packets until ctx is done or the socket is closed.
func (u *UDPSource) Run(ctx context.Context) error {
	buf := make([]byte, 2048)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = u.conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
		n, _, err := u.conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read udp: %w", err)
		}
		u.ingest(buf[:n])
	}
}

func (u *UDPSource) ingest(b []byte) {
	vals, err := DecodeDATA(b)
	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		u.dropped++
		u.log.Debug("packet dropped", slog.Int("bytes", len(b)), slog.Any("err", err))
		return
	}
	u.packets++
	for ch, v := range vals {
		if v == unusedValue {
			continue
		}
		u.values[ch] = v
	}
}

func (u *UDPSource) Hooks(context.Context, uint64, time.Duration) (component.Hooks, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := component.Hooks{}
	for _, m := range u.mappings {
		v, ok := u.values[m.Channel]
		if !ok {
			continue
		}
		out.Set(m.Component, m.Property, float64(v)*m.Scale)
	}
	return out, nil
}
