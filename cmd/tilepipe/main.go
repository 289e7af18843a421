package main

import (
	"fmt"
	"os"

	"github.com/example/tilepipe/internal/cli"
	"github.com/example/tilepipe/internal/version"
)

func main() {
	if err := cli.NewRootCmd(version.String()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
