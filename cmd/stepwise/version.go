package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stepwise",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stepwise version %s\n", stepwise.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
