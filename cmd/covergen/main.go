// covergen - playlist cover image generator
//
// covergen renders monthly and weekly playlist covers with a background
// colour derived from the label text and publishes them to object storage.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/covergen/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
