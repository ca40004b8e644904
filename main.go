//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
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

// Rsviz is a batch reporting tool written in Go. It reads JSON
// resource usage summaries, groups them by category and a split field
// (e.g. host), and writes per-group statistics as text data files and
// gnuplot scripts: boxplots, stacked "mountain" histograms, and
// work-unit regression fits.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rsviz/rsviz/report"
	"github.com/rsviz/rsviz/workdb"
)

var (
	buildTime, gitRevision string
)

func parseFlags() (cfgPath, jsonFile, listFile, splitField string, threshold int, version bool) {

	// Parse the flags, if any
	flag.StringVar(&cfgPath, "c", "", "path to config file")
	flag.StringVar(&jsonFile, "J", "", "read summaries from JSON stream file")
	flag.StringVar(&listFile, "L", "", "read summaries named by list file")
	flag.StringVar(&splitField, "s", "", "field to split groups on (e.g. host)")
	flag.IntVar(&threshold, "t", 0, "minimum matches for a group to be reported")
	flag.BoolVar(&version, "version", false, "Print version and exit")
	flag.Parse()

	return
}

func printVersion() {
	fmt.Printf("Rsviz version: %v\n", Version)
	if buildTime != "" {
		fmt.Printf("Build time: %v\n", buildTime)
	}
	if gitRevision != "" {
		fmt.Printf("Git revision: %v\n", gitRevision)
	}
}

func main() {

	cfgPath, jsonFile, listFile, splitField, threshold, version := parseFlags()

	if version {
		printVersion()
		return
	}

	cfg, err := report.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Error reading config %q: %v", cfgPath, err)
	}

	// Flags override the config file.
	if jsonFile != "" {
		cfg.InputFile = jsonFile
		cfg.InputType = report.InputNDJSON
	}
	if listFile != "" {
		cfg.InputFile = listFile
		cfg.InputType = report.InputList
	}
	if splitField != "" {
		cfg.SplitField = splitField
	}
	if threshold != 0 {
		cfg.Threshold = threshold
	}
	if flag.NArg() > 0 {
		cfg.OutputDir = flag.Arg(0)
	}

	if err := cfg.Process(); err != nil {
		log.Fatalf("Error: %v", err)
	}

	g := report.NewGenerator(cfg)
	if cfg.DbConnectString != "" {
		db, err := workdb.InitDb(cfg.DbConnectString, "")
		if err != nil {
			log.Fatalf("Error connecting to work-units db: %v", err)
		}
		defer db.Close()
		g.SetWorkUnitsLookup(db)
	}

	if err := g.Run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
