package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := log.Default()

	root := &cobra.Command{
		Use:          "api",
		Short:        "Wholesale market trade API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(logger))
	root.AddCommand(seedCmd(logger))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
