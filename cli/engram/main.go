package main

import (
	"os"

	engramcmder "github.com/quietmindco/engram/cmd/engram"
)

func main() {
	cmd := engramcmder.NewEngramCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
