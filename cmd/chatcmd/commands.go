package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/commands"
	"github.com/jingkaihe/chatcmd/pkg/presenter"
)

// CommandsListConfig holds flags for commands list
type CommandsListConfig struct {
	Native bool
	All    bool
	Format string
}

// NewCommandsListConfig returns the default commands list flags
func NewCommandsListConfig() *CommandsListConfig {
	return &CommandsListConfig{Format: formatText}
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Inspect the chat command catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var commandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and skill commands",
	Long: `List the command catalog: built-in commands followed by commands
synthesized from skills. Commands gated by configuration (config, debug,
bash) are hidden unless enabled or --all is given. With --native the
platform menu projection is listed instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := NewCommandsListConfig()
		config.Native, _ = cmd.Flags().GetBool("native")
		config.All, _ = cmd.Flags().GetBool("all")
		config.Format, _ = cmd.Flags().GetString("format")
		if err := validateFormat(config.Format); err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		return listCommands(cmd.OutOrStdout(), presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()), p, config)
	},
}

var commandsHelpCmd = &cobra.Command{
	Use:   "help",
	Short: "Print the /commands reply",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), p.registry.FormatCommandsHelp(p.config, p.skillCommands))
		return nil
	},
}

func init() {
	defaults := NewCommandsListConfig()
	commandsListCmd.Flags().Bool("native", defaults.Native, "List native command menu specs")
	commandsListCmd.Flags().Bool("all", defaults.All, "Include commands disabled by configuration")
	commandsListCmd.Flags().StringP("format", "f", defaults.Format, "Output format (text, json or yaml)")

	commandsCmd.AddCommand(commandsListCmd)
	commandsCmd.AddCommand(commandsHelpCmd)
}

type commandView struct {
	Key         string           `json:"key" yaml:"key"`
	NativeName  string           `json:"nativeName,omitempty" yaml:"nativeName,omitempty"`
	Aliases     []string         `json:"aliases" yaml:"aliases"`
	Description string           `json:"description" yaml:"description"`
	Scope       commands.Scope   `json:"scope" yaml:"scope"`
	AcceptsArgs bool             `json:"acceptsArgs" yaml:"acceptsArgs"`
	Args        []commandArgView `json:"args,omitempty" yaml:"args,omitempty"`
	Skill       bool             `json:"skill,omitempty" yaml:"skill,omitempty"`
}

type commandArgView struct {
	Name     string   `json:"name" yaml:"name"`
	Choices  []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Captures bool     `json:"captureRemaining,omitempty" yaml:"captureRemaining,omitempty"`
}

func commandViews(p *pipeline, defs []commands.Definition) []commandView {
	views := make([]commandView, 0, len(defs))
	for _, def := range defs {
		view := commandView{
			Key:         def.Key,
			NativeName:  def.NativeName,
			Aliases:     def.TextAliases,
			Description: def.Description,
			Scope:       def.Scope,
			AcceptsArgs: def.AcceptsArgs,
			Skill:       commands.IsSkillCommand(def),
		}
		for _, arg := range def.Args {
			view.Args = append(view.Args, commandArgView{
				Name:     arg.Name,
				Choices:  commands.ResolveArgChoices(def, arg, commands.ChoiceContext{Config: p.config}),
				Captures: arg.CaptureRemaining,
			})
		}
		views = append(views, view)
	}
	return views
}

func listCommands(w io.Writer, out presenter.Presenter, p *pipeline, config *CommandsListConfig) error {
	if config.Native {
		return listNativeCommands(w, out, p, config)
	}

	defs := p.registry.ListForConfig(p.config, p.skillCommands)
	if config.All {
		defs = p.registry.List(p.skillCommands)
	}
	views := commandViews(p, defs)
	if config.Format != formatText {
		return writeStructured(w, config.Format, views)
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		kind := string(v.Scope)
		if v.Skill {
			kind = "skill"
		}
		rows = append(rows, []string{strings.Join(v.Aliases, " "), v.NativeName, kind, truncate(v.Description, 50)})
	}
	out.Table([]string{"ALIASES", "NATIVE", "SCOPE", "DESCRIPTION"}, rows)
	return nil
}

func listNativeCommands(w io.Writer, out presenter.Presenter, p *pipeline, config *CommandsListConfig) error {
	if !p.config.NativeEnabled() && !config.All {
		out.Warning("Native commands are disabled (commands.native: false)")
		return nil
	}

	specs := p.registry.NativeSpecsForConfig(p.config, p.skillCommands)
	if config.All {
		specs = p.registry.NativeSpecs(p.skillCommands)
	}
	if config.Format != formatText {
		return writeStructured(w, config.Format, specs)
	}

	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, []string{spec.Name, yesNo(spec.AcceptsArgs), truncate(spec.Description, 60)})
	}
	out.Table([]string{"NAME", "ARGS", "DESCRIPTION"}, rows)
	out.Info("Surfaces: " + strings.Join(p.registry.Surfaces(), ", "))
	return nil
}
