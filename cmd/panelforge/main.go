/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"panelforge/internal/config"
	"panelforge/internal/crash"
	applog "panelforge/internal/log"
	"panelforge/internal/ui"
	"panelforge/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "panelforge - data-driven instrument panels")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  panelforge version|-v|--version                 Show version")
	fmt.Fprintln(w, "  panelforge validate <scene>                     Check a scene against the schema and build it")
	fmt.Fprintln(w, "  panelforge render <scene> <out> [WxH]           Render one frame to .png, .svg or .pdf")
	fmt.Fprintln(w, "  panelforge tree <scene>                         Print the instantiated component tree")
	fmt.Fprintln(w, "  panelforge click <scene> <x> <y> <out>          Press at (x, y) and render the result")
	fmt.Fprintln(w, "  panelforge watch <scene> <out.png>              Re-render on scene and hook changes")
	fmt.Fprintln(w, "  panelforge fmt <scene>                          Re-indent a scene, keeping a backup")
	fmt.Fprintln(w, "  panelforge hook <db> <component> <prop> <json>  Store a hook value (sqlite path or postgres:// DSN)")
	fmt.Fprintln(w, "  panelforge ui <scene>                           Open the viewer (build with -tags fyne)")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 2
	}
	scene := ""
	if len(args) > 1 {
		scene = args[1]
	}
	defer crash.Recover(scene)

	if args[0] == "version" || args[0] == "--version" || args[0] == "-v" {
		fmt.Fprintln(stdout, "panelforge", version.String())
		return 0
	}

	cfg, password, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: config:", err)
		return 1
	}
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))

	need := map[string]int{"validate": 2, "render": 3, "tree": 2, "click": 5, "watch": 3, "fmt": 2, "hook": 5, "ui": 2}
	n, ok := need[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage(stdout)
		return 2
	}
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "%s needs %d argument(s)\n", args[0], n-1)
		usage(stdout)
		return 2
	}

	c := &cli{cfg: cfg, password: password, out: stdout, log: l}
	switch args[0] {
	case "validate":
		err = c.validate(args[1])
	case "render":
		size := ""
		if len(args) > 3 {
			size = args[3]
		}
		err = c.render(args[1], args[2], size)
	case "tree":
		err = c.tree(args[1])
	case "click":
		err = c.click(args[1], args[2], args[3], args[4])
	case "watch":
		err = c.watch(args[1], args[2])
	case "fmt":
		err = c.format(args[1])
	case "hook":
		err = c.hook(args[1], args[2], args[3], args[4])
	case "ui":
		err = ui.Run(args[1])
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
