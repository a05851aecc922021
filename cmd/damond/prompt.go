// Copyright 2021 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file implements prompt for damond testability.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/damonitor/godamon/pkg/damon"
)

type Cmd struct {
	description string
	Run         func([]string) commandStatus
}

type Prompt struct {
	r    *bufio.Reader
	w    *bufio.Writer
	f    *flag.FlagSet
	ctxs []*damon.Context
	cmds map[string]Cmd
	ps1  string
	echo bool
	quit bool
}

type commandStatus int

const (
	csOk commandStatus = iota
	csErr
)

func NewPrompt(ps1 string, reader *bufio.Reader, writer *bufio.Writer) *Prompt {
	p := Prompt{
		r:   reader,
		w:   writer,
		ps1: ps1,
	}
	p.cmds = map[string]Cmd{
		"q":       {"quit interactive prompt.", p.cmdQuit},
		"start":   {"start every loaded context.", p.cmdStart},
		"stop":    {"stop every loaded context.", p.cmdStop},
		"dump":    {"dump regions and scheme stats of every context.", p.cmdDump},
		"running": {"print the number of currently running contexts.", p.cmdRunning},
		"help":    {"print help.", p.cmdHelp},
		"nop":     {"no operation.", p.cmdNop},
	}
	return &p
}

func (p *Prompt) output(format string, a ...interface{}) {
	if p.w == nil {
		return
	}
	p.w.WriteString(fmt.Sprintf(format, a...))
	p.w.Flush()
}

func (p *Prompt) Interact() {
	logger := log.New(p.w, "", log.Ltime|log.Lmicroseconds)
	damon.SetLogger(logger)
	for !p.quit {
		p.output(p.ps1)
		rawcmd, err := p.r.ReadString(byte('\n'))
		if err != nil {
			p.output("quit: %s\n", err)
			break
		}
		if p.echo {
			p.output("%s", rawcmd)
		}
		cmdSlice := strings.Split(strings.TrimSpace(rawcmd), " ")
		if len(cmdSlice) == 0 {
			continue
		}
		if cmdSlice[0] == "" {
			cmdSlice[0] = "nop"
		}
		p.f = flag.NewFlagSet(cmdSlice[0], flag.ContinueOnError)
		if cmd, ok := p.cmds[cmdSlice[0]]; ok {
			cmd.Run(cmdSlice[1:])
		} else if len(cmdSlice[0]) > 0 {
			p.output("unknown command %q\n", cmdSlice[0])
		}
	}
	p.output("quit.\n")
}

func (p *Prompt) SetEcho(newEcho bool) {
	p.echo = newEcho
}

func (p *Prompt) SetContexts(ctxs []*damon.Context) {
	p.ctxs = ctxs
}

func sortedStringKeys(m map[string]Cmd) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Prompt) cmdNop(args []string) commandStatus {
	return csOk
}

func (p *Prompt) cmdQuit(args []string) commandStatus {
	p.quit = true
	return csOk
}

func (p *Prompt) cmdHelp(args []string) commandStatus {
	p.output("Available commands:\n")
	for _, name := range sortedStringKeys(p.cmds) {
		p.output("        %-10s %s\n", name, p.cmds[name].description)
	}
	return csOk
}

func (p *Prompt) cmdStart(args []string) commandStatus {
	if err := damon.Start(p.ctxs); err != nil {
		p.output("start failed: %s\n", err)
		return csErr
	}
	p.output("started %d context(s)\n", len(p.ctxs))
	return csOk
}

func (p *Prompt) cmdStop(args []string) commandStatus {
	if err := damon.Stop(p.ctxs); err != nil {
		p.output("stop failed: %s\n", err)
		return csErr
	}
	p.output("stopped %d context(s)\n", len(p.ctxs))
	return csOk
}

func (p *Prompt) cmdRunning(args []string) commandStatus {
	p.output("%d running context(s) process-wide\n", damon.NrRunningContexts())
	return csOk
}

func (p *Prompt) cmdDump(args []string) commandStatus {
	for i, ctx := range p.ctxs {
		p.output("context %d: running=%v\n", i, ctx.Running())
		for _, t := range ctx.Targets() {
			p.output("  target %d: %d region(s)\n", t.ID, damon.NrRegions(t))
			for _, r := range t.Regions() {
				p.output("    %s\n", r)
			}
		}
		for si, s := range ctx.Schemes() {
			count, sz := s.Stat()
			p.output("  scheme %d (%s): applied to %d region(s), %d byte(s)\n", si, s.Action, count, sz)
		}
	}
	return csOk
}
