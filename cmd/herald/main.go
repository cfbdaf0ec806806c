// herald: management CLI for herald test configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/agilira/herald"
	"github.com/agilira/herald/cmd/cli"
)

func main() {
	err := cli.NewManager().Run(os.Args[1:])
	if err == nil {
		return
	}
	var exitErr *herald.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(herald.ExitCode(err))
}
