package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const appVersion = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("voice-transcriber %s (%s/%s)\n", appVersion, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
