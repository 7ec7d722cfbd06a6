package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/logger"
	"github.com/jingkaihe/chatcmd/pkg/presenter"
	"github.com/jingkaihe/chatcmd/pkg/skills"
)

// SkillListConfig holds flags for skill list
type SkillListConfig struct {
	Format       string
	EligibleOnly bool
}

// NewSkillListConfig returns the default skill list flags
func NewSkillListConfig() *SkillListConfig {
	return &SkillListConfig{Format: formatText}
}

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Inspect skills",
	Long:  `List discovered skills, the chat commands synthesized from them and the prompt block handed to the agent.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills",
	Long: `List every skill found in the extra, bundled, managed and workspace
directories after merging by name. The ELIGIBLE column shows whether the
skill passes platform, binary, environment and config requirements.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := NewSkillListConfig()
		config.Format, _ = cmd.Flags().GetString("format")
		config.EligibleOnly, _ = cmd.Flags().GetBool("eligible")
		if err := validateFormat(config.Format); err != nil {
			return err
		}

		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		return listSkills(cmd.OutOrStdout(), presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()), p, config)
	},
}

var skillCommandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List chat commands synthesized from skills",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		return listSkillCommands(cmd.OutOrStdout(), presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()), p, format)
	},
}

var skillPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the skills prompt block",
	Long: `Print the <available_skills> block built from the eligible skills. With
--format json or yaml the whole snapshot is printed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		p, err := newPipeline(cmd.Context(), viper.GetViper())
		if err != nil {
			return err
		}
		snapshot := p.snapshot(cmd.Context())
		if format != formatText {
			return writeStructured(cmd.OutOrStdout(), format, snapshot)
		}
		if snapshot.Prompt == "" {
			presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()).Info("No eligible skills")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), snapshot.Prompt)
		return nil
	},
}

var skillWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload skills when their directories change",
	Long: `Watch every skills directory and print the synthesized commands whenever a
SKILL.md file is added, changed or removed. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		p, err := newPipeline(ctx, viper.GetViper())
		if err != nil {
			return err
		}
		return watchSkills(ctx, presenter.NewForWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()), p)
	},
}

func init() {
	listDefaults := NewSkillListConfig()
	skillListCmd.Flags().StringP("format", "f", listDefaults.Format, "Output format (text, json or yaml)")
	skillListCmd.Flags().Bool("eligible", listDefaults.EligibleOnly, "Only list skills that pass eligibility checks")
	skillCommandsCmd.Flags().StringP("format", "f", formatText, "Output format (text, json or yaml)")
	skillPromptCmd.Flags().StringP("format", "f", formatText, "Output format (text, json or yaml)")

	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillCommandsCmd)
	skillCmd.AddCommand(skillPromptCmd)
	skillCmd.AddCommand(skillWatchCmd)
}

type skillView struct {
	Name           string `json:"name" yaml:"name"`
	Key            string `json:"key" yaml:"key"`
	Source         string `json:"source" yaml:"source"`
	Directory      string `json:"directory" yaml:"directory"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Eligible       bool   `json:"eligible" yaml:"eligible"`
	UserInvocable  bool   `json:"userInvocable" yaml:"userInvocable"`
	ModelInvocable bool   `json:"modelInvocable" yaml:"modelInvocable"`
}

func skillViews(p *pipeline, eligibleOnly bool) []skillView {
	views := []skillView{}
	for _, entry := range p.setup.Entries() {
		eligible := skills.ShouldInclude(entry, p.setup.Filter)
		if eligibleOnly && !eligible {
			continue
		}
		views = append(views, skillView{
			Name:           entry.Skill.Name,
			Key:            entry.Key(),
			Source:         string(entry.Skill.Source),
			Directory:      entry.Skill.BaseDir,
			Description:    entry.Skill.Description,
			Eligible:       eligible,
			UserInvocable:  entry.Invocation.UserInvocable,
			ModelInvocable: !entry.Invocation.DisableModelInvocation,
		})
	}
	return views
}

func listSkills(w io.Writer, out presenter.Presenter, p *pipeline, config *SkillListConfig) error {
	if !p.setup.Enabled {
		out.Warning("Skills are disabled")
		return nil
	}

	views := skillViews(p, config.EligibleOnly)
	if config.Format != formatText {
		return writeStructured(w, config.Format, views)
	}

	if err := p.setup.Report.Warnings.ErrorOrNil(); err != nil {
		out.Warning(err.Error())
	}
	if len(views) == 0 {
		out.Info("No skills found in " + strings.Join(p.setup.Loader.DirPaths(), ", "))
		return nil
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.Name, v.Source, yesNo(v.Eligible), truncate(v.Description, 60)})
	}
	out.Table([]string{"NAME", "SOURCE", "ELIGIBLE", "DESCRIPTION"}, rows)
	return nil
}

func listSkillCommands(w io.Writer, out presenter.Presenter, p *pipeline, format string) error {
	if format != formatText {
		specs := p.skillCommands
		if specs == nil {
			specs = []skills.CommandSpec{}
		}
		return writeStructured(w, format, specs)
	}
	if len(p.skillCommands) == 0 {
		out.Info("No skill commands")
		return nil
	}

	rows := make([][]string, 0, len(p.skillCommands))
	for _, spec := range p.skillCommands {
		rows = append(rows, []string{"/" + spec.Name, spec.SkillName, truncate(spec.Description, 60)})
	}
	out.Table([]string{"COMMAND", "SKILL", "DESCRIPTION"}, rows)
	return nil
}

func watchDebounce(cfg *skills.Config) time.Duration {
	if cfg != nil && cfg.Load.WatchDebounceMs > 0 {
		return time.Duration(cfg.Load.WatchDebounceMs) * time.Millisecond
	}
	return skills.DefaultWatchDebounce
}

func watchSkills(ctx context.Context, out presenter.Presenter, p *pipeline) error {
	if !p.setup.Enabled {
		return errors.New("skills are disabled")
	}

	watcher, err := skills.NewWatcher(p.setup.Loader, watchDebounce(p.setup.Config), func(ctx context.Context, report *skills.Report) {
		p.setup.Report = report
		p.rebuild(ctx)

		names := make([]string, 0, len(p.skillCommands))
		for _, spec := range p.skillCommands {
			names = append(names, "/"+spec.Name)
		}
		out.Success(fmt.Sprintf("Reloaded %d skill(s): %s", len(report.Entries), strings.Join(names, " ")))
		if err := report.Warnings.ErrorOrNil(); err != nil {
			out.Warning(err.Error())
		}
	})
	if err != nil {
		return err
	}

	out.Info("Watching " + strings.Join(p.setup.Loader.DirPaths(), ", "))
	logger.G(ctx).WithField("debounce", watchDebounce(p.setup.Config)).Debug("starting skill watcher")
	return watcher.Run(ctx)
}
