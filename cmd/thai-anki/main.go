package main

import (
	"os"

	"github.com/rcliao/thai-anki/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
