package main

import (
	"os"

	"github.com/ffenix113/smp-tool/cmd/smp-tool/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
