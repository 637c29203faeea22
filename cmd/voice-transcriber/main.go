package main

import (
	"os"

	"github.com/jjamesmartiin/voice-transcriber/cmd/voice-transcriber/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
