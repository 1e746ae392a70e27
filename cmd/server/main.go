package main

import (
	"fmt"
	"os"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hata:", err)
		os.Exit(1)
	}
}
