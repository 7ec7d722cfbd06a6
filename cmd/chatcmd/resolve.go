package main

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/commands"
	"github.com/jingkaihe/chatcmd/pkg/logger"
	"github.com/jingkaihe/chatcmd/pkg/presenter"
	"github.com/jingkaihe/chatcmd/pkg/skills"
)

// ResolveConfig holds flags for the resolve command
type ResolveConfig struct {
	BotUsername string
	Surface     string
	Native      bool
	Format      string
}

// NewResolveConfig returns the default resolve flags
func NewResolveConfig() *ResolveConfig {
	return &ResolveConfig{Format: formatText}
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Show how a chat message resolves to a command",
	Long: `Normalize a chat message and resolve it against the command catalog. The
output shows the normalized text, the matched built-in command with its
parsed arguments or argument menu, or the skill invocation and the prompt it
is rewritten to.

Examples:
  chatcmd resolve "/think: high"
  chatcmd resolve "/status@mybot" --bot-username mybot
  chatcmd resolve "/deploy staging" --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getResolveConfigFromFlags(cmd)
		if err := validateFormat(config.Format); err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		res := resolveText(cmd.Context(), p, strings.Join(args, " "), config)
		return printResolution(cmd.OutOrStdout(), presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()), res, config.Format)
	},
}

func init() {
	defaults := NewResolveConfig()
	resolveCmd.Flags().String("bot-username", defaults.BotUsername, "Bot username stripped from /cmd@bot mentions")
	resolveCmd.Flags().String("surface", defaults.Surface, "Chat surface the message came from (e.g. telegram)")
	resolveCmd.Flags().Bool("native", defaults.Native, "Treat the message as a native command invocation")
	resolveCmd.Flags().StringP("format", "f", defaults.Format, "Output format (text, json or yaml)")
	if err := bindFlags(viper.GetViper(), resolveCmd.Flags(), map[string]string{"bot_username": "bot-username"}); err != nil {
		panic(err)
	}
}

func getResolveConfigFromFlags(cmd *cobra.Command) *ResolveConfig {
	config := NewResolveConfig()
	config.BotUsername = viper.GetString("bot_username")
	if surface, err := cmd.Flags().GetString("surface"); err == nil {
		config.Surface = surface
	}
	if native, err := cmd.Flags().GetBool("native"); err == nil {
		config.Native = native
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	return config
}

type menuView struct {
	Arg     string   `json:"arg" yaml:"arg"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Choices []string `json:"choices" yaml:"choices"`
}

// resolution is the result of resolving one chat message
type resolution struct {
	Input      string         `json:"input" yaml:"input"`
	Normalized string         `json:"normalized" yaml:"normalized"`
	Handled    bool           `json:"handled" yaml:"handled"`
	Detected   bool           `json:"detected" yaml:"detected"`
	Command    string         `json:"command,omitempty" yaml:"command,omitempty"`
	Args       *commands.Args `json:"args,omitempty" yaml:"args,omitempty"`
	Canonical  string         `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Menu       *menuView      `json:"menu,omitempty" yaml:"menu,omitempty"`
	Skill      string         `json:"skill,omitempty" yaml:"skill,omitempty"`
	Prompt     string         `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

func resolveText(ctx context.Context, p *pipeline, text string, config *ResolveConfig) resolution {
	res := resolution{
		Input:      text,
		Normalized: p.registry.Normalize(text, commands.NormalizeOptions{BotUsername: config.BotUsername}),
	}

	source := commands.CommandSourceText
	if config.Native {
		source = commands.CommandSourceNative
	}
	res.Handled = p.registry.ShouldHandleTextCommands(commands.TextHandlingParams{
		Config:        p.config,
		Surface:       config.Surface,
		CommandSource: source,
	})
	res.Detected = p.registry.Detect(res.Normalized)

	log := logger.G(ctx).WithField("normalized", res.Normalized)
	if !res.Handled {
		log.Debug("text commands disabled for surface")
		return res
	}

	if cmd, ok := p.registry.ResolveTextCommand(res.Normalized); ok {
		def := cmd.Command
		res.Command = def.Key
		args := commands.ParseArgs(def, cmd.Args)
		if cmd.Args != "" {
			res.Args = args
		}
		res.Canonical = commands.BuildCommandTextFromArgs(def, args)
		if menu := commands.ResolveArgMenu(def, args, p.config); menu != nil {
			res.Menu = &menuView{Arg: menu.Arg.Name, Title: menu.Title, Choices: menu.Choices}
		}
		log.WithField("command", def.Key).Debug("resolved built-in command")
		return res
	}

	if inv := skills.ResolveCommandInvocation(res.Normalized, p.skillCommands); inv != nil {
		res.Command = commands.SkillKeyPrefix + inv.Command.SkillName
		res.Skill = inv.Command.SkillName
		res.Canonical = commands.BuildCommandText(inv.Command.Name, inv.Args)
		res.Prompt = skills.RewriteInvocationPrompt(inv)
		log.WithField("skill", inv.Command.SkillName).Debug("resolved skill command")
	}
	return res
}

func printResolution(w io.Writer, out presenter.Presenter, res resolution, format string) error {
	if format != formatText {
		return writeStructured(w, format, res)
	}

	out.Field("input", res.Input)
	out.Field("normalized", res.Normalized)
	out.Field("detected", yesNo(res.Detected))
	if !res.Handled {
		out.Warning("Text commands are not handled on this surface")
		return nil
	}
	if res.Command == "" {
		out.Info("Not a command; the message is passed to the agent unchanged")
		return nil
	}

	out.Field("command", res.Command)
	out.Field("canonical", res.Canonical)
	if res.Args != nil {
		names := make([]string, 0, len(res.Args.Values))
		for name := range res.Args.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out.Field("arg."+name, res.Args.Values[name])
		}
	}
	if res.Menu != nil {
		title := res.Menu.Title
		if title == "" {
			title = "Choose " + res.Menu.Arg
		}
		out.Field("menu", title+": "+strings.Join(res.Menu.Choices, ", "))
	}
	if res.Prompt != "" {
		out.Section("Prompt")
		out.Info(res.Prompt)
	}
	return nil
}
