package main

import (
	"os"

	"github.com/sysconfig/pkg/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
