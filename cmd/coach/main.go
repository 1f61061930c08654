// Command coach runs the speaking-coach service and its maintenance tools.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Speaking-coach scoring service",
	Long: `coach scores eye contact, gaze variation, expression and filler words
from landmark and transcript streams, and keeps a history of practice sessions.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
