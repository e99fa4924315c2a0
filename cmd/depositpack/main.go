package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/depositpack/depositpack/internal/cmd"
	"github.com/depositpack/depositpack/internal/version"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version.GetFullVersion()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
