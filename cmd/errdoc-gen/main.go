// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	cerrors "github.com/pingcap/actorflow/pkg/errors"
	"github.com/spf13/pflag"
)

func main() {
	var outpath string
	pflag.StringVar(&outpath, "output", "", "Specify the error documentation output file path")
	pflag.Parse()
	if outpath == "" {
		fmt.Fprintln(os.Stderr, "Usage: errdoc-gen --output /path/to/errors.toml")
		os.Exit(1)
	}

	// Keep the description and workaround written in an existing file.
	existing := map[string]cerrors.DocSpec{}
	if file, err := os.ReadFile(outpath); err == nil {
		if _, err := toml.Decode(string(file), &existing); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid toml file %s when merging exists description/workaround: %v\n", outpath, err)
			os.Exit(1)
		}
	}

	doc := cerrors.GenerateErrorDoc(cerrors.AllErrors(), existing)
	if err := os.WriteFile(outpath, doc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outpath, err)
		os.Exit(1)
	}
}
