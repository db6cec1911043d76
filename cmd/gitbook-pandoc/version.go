// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of gitbook-pandoc and pandoc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gitbook-pandoc %s\n", version)
		v, err := newConverter(viper.GetString("pandoc")).Version()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "pandoc: not available")
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", v)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
