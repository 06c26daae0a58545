package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/portbridge/portbridge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage portbridge configuration",
	Long:  `View and initialize portbridge configuration.`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View effective configuration",
	Long:  `Display the effective configuration after defaults, config file and environment are merged. The password is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return viewConfig()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long:  `Create ~/.portbridge/config.yaml with commented defaults. An existing file is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.InitializeDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Println("configuration file:", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configInitCmd)
}

func viewConfig() error {
	manager := config.NewManager()
	if err := manager.Load(cfgFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rendered, err := manager.GetConfig().Render()
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
