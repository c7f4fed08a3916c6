package cmd

import (
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage the gallery of known identities",
	Long:  `Build, inspect, and import the reference gallery used for identification.`,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
}
