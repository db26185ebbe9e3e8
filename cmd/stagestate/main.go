package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "stagestate <file>",
	Short: "Report disk/tape residency of grid storage files",
	Long: `stagestate reads a file of whitespace separated URLs (/pnfs paths,
gsiftp:// or srm:// URLs), converts them to SURLs, looks up the
user.status attribute of each file and prints the percentage of files
staged to disk.

  ONLINE               the file is only on disk
  NEARLINE             the file is only on tape
  ONLINE_AND_NEARLINE  the file is on disk and tape`,
	Args:         cobra.ExactArgs(1),
	RunE:         runCheck,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
