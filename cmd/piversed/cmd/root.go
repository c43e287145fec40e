package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"piverse/internal/app"
	"piverse/internal/types"
)

// NewRootCmd creates the piversed root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "piversed",
		Short:         "Piverse challenge escrow and prediction market ABCI daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().String("home", ".piverse", "node home directory (state lives under <home>/data)")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("home", rootCmd.PersistentFlags().Lookup("home"))

	rootCmd.AddCommand(
		newStartCmd(v),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s app_version=%d\n", types.AppName, app.AppVersion)
			return err
		},
	}
}
