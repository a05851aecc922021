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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/damonitor/godamon/pkg/damon"
	"github.com/damonitor/godamon/pkg/version"
)

// Config is the top-level file format damond loads: zero or more
// independently started Contexts, mirroring the Config{Policy, Routines}
// shape of cmd/memtierd/main.go, generalized from "one policy" to "one or
// more monitoring contexts".
type Config struct {
	Contexts []damon.ContextConfig `yaml:"contexts"`
}

func exit(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "damond: "+format+"\n", a...)
	os.Exit(1)
}

func loadConfigFile(filename string) []*damon.Context {
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		exit("%s", err)
	}
	var config Config
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		exit("error in %q: %s", filename, err)
	}

	ctxs := make([]*damon.Context, 0, len(config.Contexts))
	for i, cc := range config.Contexts {
		ctx, err := cc.NewContext()
		if err != nil {
			exit("context %d: %s", i, err)
		}
		ctxs = append(ctxs, ctx)
	}
	return ctxs
}

func main() {
	damon.SetLogger(log.New(os.Stderr, "", 0))
	log.Printf("damond (version %s, build %s) starting...", version.Version, version.Build)
	optPrompt := flag.Bool("prompt", false, "launch interactive prompt (ignore other parameters)")
	optConfig := flag.String("config", "", "launch non-interactive mode with config file")
	optConfigDumpJson := flag.Bool("config-dump-json", false, "dump effective configuration of each context in JSON")
	optDebug := flag.Bool("debug", false, "print debug output")

	flag.Parse()
	damon.SetLogDebug(*optDebug)

	if *optPrompt {
		prompt := NewPrompt("damond> ", bufio.NewReader(os.Stdin), bufio.NewWriter(os.Stdout))
		prompt.Interact()
		return
	}

	var ctxs []*damon.Context
	if *optConfig != "" {
		ctxs = loadConfigFile(*optConfig)
	} else {
		exit("missing -prompt or -config")
	}

	if *optConfigDumpJson {
		// loadConfigFile has already read and validated this file.
		var config Config
		configBytes, _ := os.ReadFile(*optConfig)
		_ = yaml.Unmarshal(configBytes, &config)
		for i, cc := range config.Contexts {
			js, err := cc.GetConfigJson()
			if err != nil {
				exit("context %d: %s", i, err)
			}
			fmt.Println(js)
		}
		os.Exit(0)
	}

	if err := damon.RegisterMetrics("damond", ctxs); err != nil {
		damon.Log().Warnf("metrics registration failed: %s", err)
	}

	if err := damon.Start(ctxs); err != nil {
		exit("error starting contexts: %s", err)
	}

	prompt := NewPrompt("damond> ", bufio.NewReader(os.Stdin), bufio.NewWriter(os.Stdout))
	if stdinFileInfo, _ := os.Stdin.Stat(); (stdinFileInfo.Mode() & os.ModeCharDevice) == 0 {
		prompt.SetEcho(true)
	}
	prompt.SetContexts(ctxs)
	prompt.Interact()
}
