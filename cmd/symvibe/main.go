package main

import (
	"os"

	"github.com/sqlvibe/symvibe/internal/log"
)

func main() {
	err := newRootCommand().Execute()
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
