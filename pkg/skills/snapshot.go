package skills

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// PromptFormatter renders the skills block of the agent prompt
type PromptFormatter func(skills []Skill) string

// SnapshotSkill is the per-skill summary stored with a session
type SnapshotSkill struct {
	Name       string `json:"name" yaml:"name"`
	PrimaryEnv string `json:"primaryEnv,omitempty" yaml:"primaryEnv,omitempty"`
}

// Snapshot captures the eligible skills and the prompt built from them
type Snapshot struct {
	Prompt   string           `json:"prompt" yaml:"prompt"`
	Skills   []SnapshotSkill  `json:"skills" yaml:"skills"`
	Resolved []Skill          `json:"-" yaml:"-"`
	Version  int              `json:"version,omitempty" yaml:"version,omitempty"`
	Warnings *multierror.Error `json:"-" yaml:"-"`
}

// SnapshotOptions configures BuildSnapshot
type SnapshotOptions struct {
	FilterOptions
	Formatter PromptFormatter
	Version   int
}

// FormatSkillsForPrompt renders skills as an <available_skills> block
func FormatSkillsForPrompt(skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("The following skills provide specialized instructions for specific tasks.\n")
	sb.WriteString("Read a skill's file when the task matches its description.\n\n")
	sb.WriteString("<available_skills>\n")
	for _, skill := range skills {
		sb.WriteString("  <skill>\n")
		fmt.Fprintf(&sb, "    <name>%s</name>\n", html.EscapeString(skill.Name))
		fmt.Fprintf(&sb, "    <description>%s</description>\n", html.EscapeString(skill.Description))
		fmt.Fprintf(&sb, "    <location>%s</location>\n", html.EscapeString(skill.FilePath))
		sb.WriteString("  </skill>\n")
	}
	sb.WriteString("</available_skills>")
	return sb.String()
}

func promptEntries(entries []Entry) []Skill {
	skills := make([]Skill, 0, len(entries))
	for _, entry := range entries {
		if entry.Invocation.DisableModelInvocation {
			continue
		}
		skills = append(skills, entry.Skill)
	}
	return skills
}

func joinPrompt(note string, block string) string {
	parts := make([]string, 0, 2)
	if note = strings.TrimSpace(note); note != "" {
		parts = append(parts, note)
	}
	if block != "" {
		parts = append(parts, block)
	}
	return strings.Join(parts, "\n")
}

func (o SnapshotOptions) note() string {
	if o.Eligibility == nil {
		return ""
	}
	return o.Eligibility.Note
}

func (o SnapshotOptions) formatter() PromptFormatter {
	if o.Formatter == nil {
		return FormatSkillsForPrompt
	}
	return o.Formatter
}

// BuildSnapshot filters entries and renders the prompt. Skills that disable
// model invocation stay in Skills but are left out of the prompt.
func BuildSnapshot(ctx context.Context, entries []Entry, opts SnapshotOptions) Snapshot {
	eligible := FilterEntries(ctx, entries, opts.FilterOptions)
	resolved := promptEntries(eligible)

	summaries := make([]SnapshotSkill, 0, len(eligible))
	for _, entry := range eligible {
		summary := SnapshotSkill{Name: entry.Skill.Name}
		if entry.Metadata != nil {
			summary.PrimaryEnv = entry.Metadata.PrimaryEnv
		}
		summaries = append(summaries, summary)
	}

	return Snapshot{
		Prompt:   joinPrompt(opts.note(), opts.formatter()(resolved)),
		Skills:   summaries,
		Resolved: resolved,
		Version:  opts.Version,
	}
}

// Snapshot builds a snapshot from the report entries and carries over its
// warnings
func (r *Report) Snapshot(ctx context.Context, opts SnapshotOptions) Snapshot {
	snapshot := BuildSnapshot(ctx, r.Entries, opts)
	snapshot.Warnings = r.Warnings
	return snapshot
}

// BuildPrompt is BuildSnapshot(...).Prompt
func BuildPrompt(ctx context.Context, entries []Entry, opts SnapshotOptions) string {
	return BuildSnapshot(ctx, entries, opts).Prompt
}

// ResolvePromptForRun prefers a non-blank snapshot prompt, then a prompt
// built from entries, and otherwise returns ""
func ResolvePromptForRun(ctx context.Context, snapshot *Snapshot, entries []Entry, opts SnapshotOptions) string {
	if snapshot != nil {
		if prompt := strings.TrimSpace(snapshot.Prompt); prompt != "" {
			return prompt
		}
	}
	if len(entries) == 0 {
		return ""
	}
	prompt := BuildPrompt(ctx, entries, opts)
	if strings.TrimSpace(prompt) == "" {
		return ""
	}
	return prompt
}
