package main

import (
	"os"

	"github.com/actionsum/meetnotes/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
