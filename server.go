package main

import (
	"context"
	"os"

	"backendprojects/cli"
)

func main() {
	if err := cli.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
