package main

import (
	"os"

	servecmder "github.com/quietmindco/engram/cmd/engram/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "engramapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .engram/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
