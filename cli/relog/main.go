package main

import (
	"os"

	relogcmder "github.com/relogdev/relog/cmd/relog"
)

func main() {
	cmd := relogcmder.NewRelogCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
