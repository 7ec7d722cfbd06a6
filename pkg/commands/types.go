// Package commands holds the chat command catalog and turns free-form chat
// text into canonical command invocations. It understands "/cmd args",
// "/cmd: args" and "/cmd@bot args" and maps every alias to one canonical
// form so that every channel resolves commands the same way.
package commands

import "strings"

// Scope controls which surfaces a command is offered on
type Scope string

const (
	ScopeText   Scope = "text"   // typed as a /command only
	ScopeNative Scope = "native" // platform command menus only
	ScopeBoth   Scope = "both"
)

// ArgsParsing selects how argument text is decoded
type ArgsParsing string

const (
	ArgsParsingNone       ArgsParsing = "none"
	ArgsParsingPositional ArgsParsing = "positional"
)

// ChoiceContext is passed to dynamic choice providers
type ChoiceContext struct {
	Config   *Config
	Provider string
	Model    string
	Command  *Definition
	Arg      *ArgDefinition
}

// ChoiceFunc computes the allowed values of an argument at runtime
type ChoiceFunc func(ctx ChoiceContext) []string

// ArgDefinition describes one positional argument
type ArgDefinition struct {
	Name        string
	Description string
	// CaptureRemaining makes the argument swallow every remaining token
	CaptureRemaining bool
	// Choices is a fixed set of allowed values
	Choices []string
	// ChoicesFunc is consulted when Choices is nil
	ChoicesFunc ChoiceFunc
}

// ArgMenu selects the argument offered as a menu when a command is invoked
// without it. Auto picks the first argument that has choices.
type ArgMenu struct {
	Auto  bool
	Arg   string
	Title string
}

// ArgsMenuAuto offers the first argument with choices
var ArgsMenuAuto = &ArgMenu{Auto: true}

// Args is the decoded argument text of an invocation. Values is nil when
// the command does not parse positional arguments.
type Args struct {
	Raw    string            `json:"raw,omitempty" yaml:"raw,omitempty"`
	Values map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Definition is one entry of the command catalog
type Definition struct {
	Key         string
	NativeName  string
	Description string
	TextAliases []string
	AcceptsArgs bool
	ArgsParsing ArgsParsing
	Args        []ArgDefinition
	ArgsMenu    *ArgMenu
	Scope       Scope
	// FormatArgs overrides positional serialization
	FormatArgs func(values map[string]string) (string, bool)
}

// Name returns the native name, or the key when the command has none
func (d Definition) Name() string {
	if d.NativeName != "" {
		return d.NativeName
	}
	return d.Key
}

// PrimaryAlias returns the first text alias, or "/"+Key
func (d Definition) PrimaryAlias() string {
	if len(d.TextAliases) > 0 {
		if alias := strings.TrimSpace(d.TextAliases[0]); alias != "" {
			return alias
		}
	}
	return "/" + d.Key
}

// NativeSpec is the projection of a command registered with a platform
// command menu
type NativeSpec struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	AcceptsArgs bool            `json:"acceptsArgs" yaml:"acceptsArgs"`
	Args        []ArgDefinition `json:"-" yaml:"-"`
}

// Menu is produced instead of a parse result when a command that offers a
// menu is invoked without its argument
type Menu struct {
	Arg     ArgDefinition
	Choices []string
	Title   string
}

// TextCommand is a built-in command resolved from chat text. Args is empty
// when the command takes none or none were given.
type TextCommand struct {
	Command Definition
	Args    string
}
