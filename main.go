package main

import (
	"os"

	"github.com/GradPipeOrg/showoff/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
