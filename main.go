package main

import (
	"os"

	"github.com/dwnGnL/adminConsole/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
