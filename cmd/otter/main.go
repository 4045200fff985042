package main

import (
	"os"

	"github.com/otter-ml/otter-launcher/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
