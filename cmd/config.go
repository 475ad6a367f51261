package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-skill/pkg/config"
)

// configFilePath locates the config file; replaced in tests
var configFilePath = config.GetConfigFilePath

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.ocr-skill/config.yaml.

Environment variables override the file; command line flags override both.

Available commands:
  list  - List all settings
  get   - Get a specific setting
  set   - Set a specific setting

Examples:
  ocr config list
  ocr config get ollama_base_url
  ocr config set ollama_base_url http://gpu-box:11434
  ocr config set language eng+chi_sim`,
}

// listConfig prints every file-backed setting
func listConfig(w io.Writer) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "🛠️  Configuration")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "📁 Config file: %s\n\n", path)

	for _, key := range config.ListConfigKeys() {
		value, err := config.GetConfigValue(path, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-18s = %s\n", key, getDisplayValue(value))
	}

	fmt.Fprintf(w, "\n💡 Runtime: timeout %s, fast timeout %s, model source check disabled: %v\n",
		cfg.RequestTimeout, cfg.FastTimeout, cfg.DisableModelSourceCheck)
	fmt.Fprintln(w, "💡 Tip: Use 'ocr config set <key> <value>' to change a setting")
	return nil
}

// getConfig prints one setting
func getConfig(w io.Writer, key string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	value, err := config.GetConfigValue(path, key)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "📝 %s = %s\n", key, getDisplayValue(value))
	return nil
}

// setConfig updates one setting and saves the file
func setConfig(w io.Writer, key, value string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if err := config.SetConfigValue(path, key, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Successfully set %s = %s\n", key, value)
	return nil
}

// getDisplayValue returns a display-friendly value for empty strings
func getDisplayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConfig(cmd.OutOrStdout())
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getConfig(cmd.OutOrStdout(), args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConfig(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
