package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/jingkaihe/chatcmd/pkg/skills"
)

// SkillKeyPrefix prefixes the key of commands synthesized from skills
const SkillKeyPrefix = "skill:"

// DefaultNativeSurfaces are the channels that register native command menus
var DefaultNativeSurfaces = []string{"discord", "slack", "telegram"}

type aliasSpec struct {
	key         string
	canonical   string
	acceptsArgs bool
}

// Registry is the built-in command catalog together with the alias table
// and detection matcher derived from it
type Registry struct {
	builtins []Definition
	byKey    map[string]int
	aliases  map[string]aliasSpec
	surfaces map[string]struct{}

	detectionOnce sync.Once
	detection     *Detection
}

// Option is a function that configures a Registry
type Option func(*Registry) error

// WithNativeSurfaces replaces the set of surfaces that have native command
// menus
func WithNativeSurfaces(surfaces ...string) Option {
	return func(r *Registry) error {
		r.surfaces = make(map[string]struct{}, len(surfaces))
		for _, s := range surfaces {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				r.surfaces[s] = struct{}{}
			}
		}
		return nil
	}
}

func trimAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

// NewRegistry builds a registry over defs. Keys must be non-empty and
// unique. When two commands share an alias the first one keeps it.
func NewRegistry(defs []Definition, opts ...Option) (*Registry, error) {
	r := &Registry{
		builtins: make([]Definition, 0, len(defs)),
		byKey:    make(map[string]int, len(defs)),
		aliases:  map[string]aliasSpec{},
	}
	if err := WithNativeSurfaces(DefaultNativeSurfaces...)(r); err != nil {
		return nil, err
	}

	for _, def := range defs {
		if strings.TrimSpace(def.Key) == "" {
			return nil, errors.New("command key must not be empty")
		}
		if _, exists := r.byKey[def.Key]; exists {
			return nil, errors.Errorf("duplicate command key %q", def.Key)
		}
		if def.Scope == "" {
			def.Scope = ScopeBoth
		}
		if def.ArgsParsing == "" {
			def.ArgsParsing = ArgsParsingPositional
		}
		r.byKey[def.Key] = len(r.builtins)
		r.builtins = append(r.builtins, def)

		canonical := def.PrimaryAlias()
		for _, alias := range def.TextAliases {
			normalized := trimAlias(alias)
			if normalized == "" {
				continue
			}
			if _, taken := r.aliases[normalized]; taken {
				continue
			}
			r.aliases[normalized] = aliasSpec{key: def.Key, canonical: canonical, acceptsArgs: def.AcceptsArgs}
		}
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.Wrap(err, "failed to apply registry option")
		}
	}
	return r, nil
}

// Default returns a registry over BuiltinCommands
func Default(opts ...Option) *Registry {
	r, err := NewRegistry(BuiltinCommands(), opts...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in command table: %v", err))
	}
	return r
}

// Builtins returns the built-in definitions in table order
func (r *Registry) Builtins() []Definition {
	return append([]Definition(nil), r.builtins...)
}

// Lookup returns the built-in command with the given key
func (r *Registry) Lookup(key string) (Definition, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return Definition{}, false
	}
	return r.builtins[idx], true
}

// SkillDefinitions turns synthesized skill commands into catalog entries
func SkillDefinitions(specs []skills.CommandSpec) []Definition {
	defs := make([]Definition, 0, len(specs))
	for _, spec := range specs {
		defs = append(defs, Definition{
			Key:         SkillKeyPrefix + spec.SkillName,
			NativeName:  spec.Name,
			Description: spec.Description,
			TextAliases: []string{"/" + spec.Name},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingNone,
			Scope:       ScopeBoth,
		})
	}
	return defs
}

// IsSkillCommand reports whether def was synthesized from a skill
func IsSkillCommand(def Definition) bool {
	return strings.HasPrefix(def.Key, SkillKeyPrefix)
}

// List returns the built-ins followed by the skill commands
func (r *Registry) List(skillCommands []skills.CommandSpec) []Definition {
	return append(r.Builtins(), SkillDefinitions(skillCommands)...)
}

// IsEnabled reports whether a command is enabled by cfg. config, debug and
// bash must be turned on explicitly; everything else is always on.
func IsEnabled(cfg *Config, key string) bool {
	switch key {
	case "config":
		return cfg != nil && cfg.Config
	case "debug":
		return cfg != nil && cfg.Debug
	case "bash":
		return cfg != nil && cfg.Bash
	default:
		return true
	}
}

// ListForConfig is List without the built-ins disabled by cfg
func (r *Registry) ListForConfig(cfg *Config, skillCommands []skills.CommandSpec) []Definition {
	defs := make([]Definition, 0, len(r.builtins)+len(skillCommands))
	for _, def := range r.builtins {
		if IsEnabled(cfg, def.Key) {
			defs = append(defs, def)
		}
	}
	return append(defs, SkillDefinitions(skillCommands)...)
}

func nativeSpecs(defs []Definition) []NativeSpec {
	specs := make([]NativeSpec, 0, len(defs))
	for _, def := range defs {
		if def.Scope == ScopeText || def.NativeName == "" {
			continue
		}
		specs = append(specs, NativeSpec{
			Name:        def.NativeName,
			Description: def.Description,
			AcceptsArgs: def.AcceptsArgs,
			Args:        def.Args,
		})
	}
	return specs
}

// NativeSpecs projects List onto native command menus
func (r *Registry) NativeSpecs(skillCommands []skills.CommandSpec) []NativeSpec {
	return nativeSpecs(r.List(skillCommands))
}

// NativeSpecsForConfig projects ListForConfig onto native command menus
func (r *Registry) NativeSpecsForConfig(cfg *Config, skillCommands []skills.CommandSpec) []NativeSpec {
	return nativeSpecs(r.ListForConfig(cfg, skillCommands))
}

// FindByNativeName looks up a built-in by native name, case-insensitively.
// Text-only commands and skill commands are never returned.
func (r *Registry) FindByNativeName(name string) (Definition, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, def := range r.builtins {
		if def.Scope != ScopeText && def.NativeName != "" && strings.ToLower(def.NativeName) == normalized {
			return def, true
		}
	}
	return Definition{}, false
}

// ReservedNames returns the lowercase names skill commands must not take:
// every native name and every text alias without its leading slash
func (r *Registry) ReservedNames() []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, def := range r.builtins {
		add(def.NativeName)
		for _, alias := range def.TextAliases {
			add(strings.TrimPrefix(strings.TrimSpace(alias), "/"))
		}
	}
	return names
}

// BuildCommandText renders "/name" or "/name args"
func BuildCommandText(name, args string) string {
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		return "/" + name + " " + trimmed
	}
	return "/" + name
}

// BuildCommandTextFromArgs renders an invocation of def with args
func BuildCommandTextFromArgs(def Definition, args *Args) string {
	text, _ := SerializeArgs(def, args)
	return BuildCommandText(def.Name(), text)
}

// IsNativeSurface reports whether surface registers native command menus
func (r *Registry) IsNativeSurface(surface string) bool {
	if surface == "" {
		return false
	}
	_, ok := r.surfaces[strings.ToLower(surface)]
	return ok
}

// CommandSource says how a message reached the bot
type CommandSource string

const (
	CommandSourceText   CommandSource = "text"
	CommandSourceNative CommandSource = "native"
)

// TextHandlingParams are the inputs of ShouldHandleTextCommands
type TextHandlingParams struct {
	Config        *Config
	Surface       string
	CommandSource CommandSource
}

// ShouldHandleTextCommands reports whether text commands should be parsed
// for a message. Native invocations are always handled; typed commands on a
// native surface are skipped only when commands.text is false.
func (r *Registry) ShouldHandleTextCommands(params TextHandlingParams) bool {
	if params.CommandSource == CommandSourceNative {
		return true
	}
	if params.Config.TextEnabled() {
		return true
	}
	return !r.IsNativeSurface(params.Surface)
}

// Surfaces returns the native surfaces in sorted order
func (r *Registry) Surfaces() []string {
	out := make([]string, 0, len(r.surfaces))
	for s := range r.surfaces {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// FormatCommandsHelp renders the /commands listing
func (r *Registry) FormatCommandsHelp(cfg *Config, skillCommands []skills.CommandSpec) string {
	var sb strings.Builder
	sb.WriteString("Slash commands:\n")
	for _, def := range r.ListForConfig(cfg, nil) {
		line := def.PrimaryAlias()
		if def.Description != "" {
			line += " - " + def.Description
		}
		if len(def.TextAliases) > 1 {
			line += " (aliases: " + strings.Join(def.TextAliases[1:], ", ") + ")"
		}
		if def.Scope == ScopeText {
			line += " (text-only)"
		}
		sb.WriteString(line + "\n")
	}

	if len(skillCommands) > 0 {
		sb.WriteString("\nSkills:\n")
		for _, def := range SkillDefinitions(skillCommands) {
			sb.WriteString(def.PrimaryAlias() + " - " + def.Description + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
