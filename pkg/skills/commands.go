package skills

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jingkaihe/chatcmd/pkg/logger"
)

const (
	// CommandNameMaxLength bounds synthesized command names
	CommandNameMaxLength = 32
	// CommandNameFallback is used when a skill name sanitizes to nothing
	CommandNameFallback = "skill"

	maxSuffixAttempts = 999
)

var (
	invalidCommandCharsRe = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRunRe       = regexp.MustCompile(`_+`)
	skillInvocationRe     = regexp.MustCompile(`^/([^\s]+)(?:\s+([\s\S]+))?$`)
)

// SanitizeCommandName lowercases raw, replaces every run of characters
// outside [a-z0-9_] with one underscore, trims underscores and truncates to
// CommandNameMaxLength.
func SanitizeCommandName(raw string) string {
	normalized := strings.ToLower(raw)
	normalized = invalidCommandCharsRe.ReplaceAllString(normalized, "_")
	normalized = underscoreRunRe.ReplaceAllString(normalized, "_")
	normalized = strings.Trim(normalized, "_")
	if len(normalized) > CommandNameMaxLength {
		normalized = normalized[:CommandNameMaxLength]
	}
	if normalized == "" {
		return CommandNameFallback
	}
	return normalized
}

func truncate(s string, n int) string {
	if n < 1 {
		n = 1
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ResolveUniqueCommandName returns base when it is not in used (keys are
// lowercase), otherwise base with the first free _2.._999 suffix, trimming
// base so the result stays within CommandNameMaxLength.
//
// After 999 attempts it returns base[:30]+"_x" without checking that name.
func ResolveUniqueCommandName(base string, used map[string]struct{}) string {
	if _, taken := used[strings.ToLower(base)]; !taken {
		return base
	}
	for index := 2; index <= maxSuffixAttempts; index++ {
		suffix := fmt.Sprintf("_%d", index)
		candidate := truncate(base, CommandNameMaxLength-len(suffix)) + suffix
		if _, taken := used[strings.ToLower(candidate)]; !taken {
			return candidate
		}
	}
	return truncate(base, CommandNameMaxLength-2) + "_x"
}

// CommandOptions configures BuildCommandSpecs
type CommandOptions struct {
	FilterOptions
	// ReservedNames are compared case-insensitively, typically the
	// built-in command names
	ReservedNames []string
}

// BuildCommandSpecs turns eligible, user-invocable entries into uniquely
// named commands. Input order decides which entry gets the unsuffixed name.
func BuildCommandSpecs(ctx context.Context, entries []Entry, opts CommandOptions) []CommandSpec {
	eligible := FilterEntries(ctx, entries, opts.FilterOptions)

	used := make(map[string]struct{}, len(opts.ReservedNames)+len(eligible))
	for _, reserved := range opts.ReservedNames {
		used[strings.ToLower(reserved)] = struct{}{}
	}

	specs := make([]CommandSpec, 0, len(eligible))
	for _, entry := range eligible {
		if !entry.Invocation.UserInvocable {
			continue
		}
		base := SanitizeCommandName(entry.Skill.Name)
		unique := ResolveUniqueCommandName(base, used)
		used[strings.ToLower(unique)] = struct{}{}

		description := strings.TrimSpace(entry.Skill.Description)
		if description == "" {
			description = entry.Skill.Name
		}
		if unique != base {
			logger.G(ctx).WithField("skill", entry.Skill.Name).WithField("command", unique).Debug("skill command name was taken, using suffix")
		}
		specs = append(specs, CommandSpec{
			Name:        unique,
			SkillName:   entry.Skill.Name,
			Description: description,
		})
	}
	return specs
}

// Invocation is a skill command matched in a message
type Invocation struct {
	Command CommandSpec
	Args    string
}

// ResolveCommandInvocation matches a normalized "/name args" body against
// the synthesized skill commands. It returns nil when the body is not a
// skill command.
func ResolveCommandInvocation(body string, specs []CommandSpec) *Invocation {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "/") {
		return nil
	}
	match := skillInvocationRe.FindStringSubmatch(trimmed)
	if match == nil {
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(match[1]))
	if name == "" {
		return nil
	}
	for _, spec := range specs {
		if strings.ToLower(spec.Name) == name {
			return &Invocation{Command: spec, Args: strings.TrimSpace(match[2])}
		}
	}
	return nil
}

// RewriteInvocationPrompt turns a skill invocation into the message handed
// to the agent
func RewriteInvocationPrompt(inv *Invocation) string {
	parts := []string{fmt.Sprintf("Use the %q skill for this request.", inv.Command.SkillName)}
	if inv.Args != "" {
		parts = append(parts, "User input:\n"+inv.Args)
	}
	return strings.Join(parts, "\n\n")
}
