package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vidvote",
	Short: "vidvote is a like/dislike voting backend for short videos.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("welcome to use vidvote, use `vidvote -h` for help")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
