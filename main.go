package main

import (
	"os"

	"jobpilot/campaign-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
