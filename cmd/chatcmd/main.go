package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/logger"
	"github.com/jingkaihe/chatcmd/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "chatcmd",
	Short: "Inspect chat skills and slash commands",
	Long: `chatcmd discovers skills from the configured directories, synthesizes chat
commands from them and shows how a chat message resolves against the
command catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(func() {
		if err := loadConfig(viper.GetViper()); err != nil {
			presenter.Warning(err.Error())
		}
	})

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "fmt", "Log format (fmt or json)")
	flags.StringP("workspace", "w", ".", "Workspace directory; its skills/ subdirectory is scanned")
	flags.Bool("no-skills", false, "Disable skill loading")

	if err := bindFlags(viper.GetViper(), flags, map[string]string{
		"log_level":  "log-level",
		"log_format": "log-format",
		"workspace":  "workspace",
		"no_skills":  "no-skills",
	}); err != nil {
		panic(err)
	}
}

// bindFlags binds config keys to flags so that an explicitly set flag
// overrides the config file and environment
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "failed to bind flag %q", name)
		}
	}
	return nil
}

// configPaths lists config files in the order they are merged; later files
// override earlier ones
func configPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".chatcmd", "config.yaml"))
	}
	return append(paths, "chatcmd-config.yaml")
}

// loadConfig wires environment variables and merges whichever config files
// exist into v
func loadConfig(v *viper.Viper, paths ...string) error {
	v.SetEnvPrefix("CHATCMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	if len(paths) == 0 {
		paths = configPaths()
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return nil
}

func main() {
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
