package main

import (
	"os"

	"github.com/decker502/quackduck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(assetsFS))
}
