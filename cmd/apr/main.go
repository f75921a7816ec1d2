package main

import (
	"os"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
