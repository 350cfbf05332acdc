// main.go: instrumentctl entry point
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/agilira/go-integrations/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.Options{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
