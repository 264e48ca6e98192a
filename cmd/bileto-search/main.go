package main

import (
	"os"

	"github.com/bileto/bileto/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
