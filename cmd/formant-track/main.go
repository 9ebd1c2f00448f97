// Package main provides the formant-track CLI.
//
// Usage:
//
//	formant-track [flags] <pcm-file|->
//	formant-track envelope [flags] <pcm-file|->
//
// Input is raw signed 16-bit little-endian mono PCM. Output is YAML on
// stdout: one document per frame with --stream, one list otherwise.
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-formant/cmd/formant-track/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
