// main.go: Control block layout printer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// eurus-layout prints the shared control block layout and the region size
// required for a channel of the given capacity. Two differently built peers
// can diff this output before sharing a region.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/agilira/eurus"
)

func main() {
	flags := pflag.NewFlagSet("eurus-layout", pflag.ExitOnError)
	capacity := flags.Uint64("capacity", 8, "channel capacity (power of two)")
	_ = flags.Parse(os.Args[1:])

	fmt.Println("Layout of SPSC control block")
	fmt.Print(eurus.ChannelLayout())
	fmt.Printf("region size (N=%d, uint64):  %d\n",
		*capacity, eurus.RegionSize[uint64](*capacity))
}
