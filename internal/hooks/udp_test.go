/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package hooks

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"
)

func TestDecodeDATA(t *testing.T) {
	pkt := EncodeDATA(map[int][8]float32{
		3:  {120.5, 1, 2, 3, 4, 5, 6, 7},
		67: {1, unusedValue, 0, 0, 0, 0, 0, 0},
	})
	if len(pkt) != dataPrefixLen+2*recordLen {
		t.Fatalf("packet length %d", len(pkt))
	}
	vals, err := DecodeDATA(pkt)
	if err != nil {
		t.Fatalf("DecodeDATA: %v", err)
	}
	if vals[Channel{3, 0}] != 120.5 || vals[Channel{3, 7}] != 7 || vals[Channel{67, 0}] != 1 {
		t.Fatalf("values = %v", vals)
	}
	if len(vals) != 16 {
		t.Fatalf("got %d channels, want 16", len(vals))
	}

	// trailing garbage shorter than a record is ignored
	if vals, err := DecodeDATA(append(pkt, 1, 2, 3)); err != nil || len(vals) != 16 {
		t.Fatalf("trailing bytes: %d values, %v", len(vals), err)
	}
}

func TestDecodeDATARejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":      nil,
		"wrong head": []byte("DATB\x00" + string(make([]byte, recordLen))),
		"no record":  []byte("DATA\x00\x01\x00"),
	}
	for name, b := range cases {
		if _, err := DecodeDATA(b); !errors.Is(err, ErrNotDATA) {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
}

func TestParseMappings(t *testing.T) {
	in := `
# airspeed
3.0 = speed.value
13.4 = flaps.value * 40
20.5 = alt.value / 1000
17.0=ssi.pitch*0.01745
`
	ms, err := ParseMappings(in)
	if err != nil {
		t.Fatalf("ParseMappings: %v", err)
	}
	if len(ms) != 4 {
		t.Fatalf("got %d mappings", len(ms))
	}
	want := []Mapping{
		{Channel{3, 0}, "speed", "value", 1},
		{Channel{13, 4}, "flaps", "value", 40},
		{Channel{20, 5}, "alt", "value", 0.001},
		{Channel{17, 0}, "ssi", "pitch", 0.01745},
	}
	for i, w := range want {
		g := ms[i]
		if g.Channel != w.Channel || g.Component != w.Component || g.Property != w.Property || math.Abs(g.Scale-w.Scale) > 1e-12 {
			t.Fatalf("mapping %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestParseMappingsReportsEveryBadLine(t *testing.T) {
	_, err := ParseMappings("3.8 = a.b\nfoo\n1.0 = x.y / 0\n2.1 = ok.value\n")
	if err == nil {
		t.Fatalf("expected errors")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 3 {
		t.Fatalf("err = %v", err)
	}
}

func TestUDPSourceReceivesPackets(t *testing.T) {
	maps, err := ParseMappings("3.0 = speed.value\n20.5 = alt.value / 1000\n99.0 = never.value\n")
	if err != nil {
		t.Fatal(err)
	}
	u, err := ListenUDP("127.0.0.1:0", maps)
	if err != nil {
		t.Skipf("cannot bind udp: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	conn, err := net.Dial("udp", u.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	pkt := EncodeDATA(map[int][8]float32{3: {250}, 20: {0, 0, 0, 0, 0, 12000}})
	if _, err := conn.Write(pkt); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if p, d := u.Stats(); p == 1 && d == 1 {
			break
		}
		if time.Now().After(deadline) {
			p, d := u.Stats()
			t.Fatalf("stats packets=%d dropped=%d", p, d)
		}
		time.Sleep(10 * time.Millisecond)
	}
	h, err := u.Hooks(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if h["speed"]["value"] != 250.0 || math.Abs(h["alt"]["value"].(float64)-12) > 1e-9 {
		t.Fatalf("hooks = %v", h)
	}
	if _, ok := h["never"]; ok {
		t.Fatalf("unseen channel produced a hook")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
	if err := u.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
