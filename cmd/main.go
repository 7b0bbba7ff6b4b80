package main

import (
	"github.com/charmbracelet/log"
)

// Main entry point for the teenyjvm interpreter.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}
