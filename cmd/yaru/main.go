package main

import (
	"os"

	"github.com/Cer0un0/yaru/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
