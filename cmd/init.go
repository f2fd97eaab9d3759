package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/smartie/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize smartie configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the answer endpoint, widget texts and server, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
