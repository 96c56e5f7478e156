package main

import (
	"os"

	"github.com/quentinlb/cocktaild/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
