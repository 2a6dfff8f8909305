package main

import (
	"os"
)

func main() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
