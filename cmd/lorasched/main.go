// Command lorasched resolves step-wise LoRA strength schedules.
package main

import (
	"os"

	"github.com/opencode-ai/lorasched/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
