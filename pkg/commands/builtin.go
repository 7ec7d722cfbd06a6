package commands

import "strings"

var onOff = []string{"on", "off"}

func thinkingLevels(ctx ChoiceContext) []string {
	levels := []string{"off", "minimal", "low", "medium", "high"}
	provider := strings.ToLower(ctx.Provider)
	model := strings.ToLower(ctx.Model)
	if strings.HasPrefix(provider, "openai") && strings.HasPrefix(model, "gpt-5") {
		levels = append(levels, "xhigh")
	}
	return levels
}

func dockCommand(channel, title string) Definition {
	return Definition{
		Key:         "dock:" + channel,
		NativeName:  "dock_" + channel,
		Description: "Switch replies to " + title + ".",
		TextAliases: []string{"/dock-" + channel, "/dock_" + channel},
		Scope:       ScopeBoth,
	}
}

// BuiltinCommands returns a fresh copy of the built-in command table
func BuiltinCommands() []Definition {
	return []Definition{
		{
			Key:         "help",
			NativeName:  "help",
			Description: "Show available commands.",
			TextAliases: []string{"/help"},
			Scope:       ScopeBoth,
		},
		{
			Key:         "commands",
			NativeName:  "commands",
			Description: "List all slash commands.",
			TextAliases: []string{"/commands"},
			Scope:       ScopeBoth,
		},
		{
			Key:         "status",
			NativeName:  "status",
			Description: "Show current status.",
			TextAliases: []string{"/status"},
			AcceptsArgs: true,
			Scope:       ScopeBoth,
		},
		{
			Key:         "whoami",
			NativeName:  "whoami",
			Description: "Show your sender id.",
			TextAliases: []string{"/whoami", "/id"},
			Scope:       ScopeBoth,
		},
		{
			Key:         "config",
			NativeName:  "config",
			Description: "Show or set config values.",
			TextAliases: []string{"/config"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "action", Description: "show | get | set | unset", Choices: []string{"show", "get", "set", "unset"}},
				{Name: "path", Description: "Config path"},
				{Name: "value", Description: "Value for set", CaptureRemaining: true},
			},
			Scope: ScopeBoth,
		},
		{
			Key:         "debug",
			NativeName:  "debug",
			Description: "Set runtime debug overrides.",
			TextAliases: []string{"/debug"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "action", Description: "show | reset | set | unset", Choices: []string{"show", "reset", "set", "unset"}},
				{Name: "path", Description: "Debug path"},
				{Name: "value", Description: "Value for set", CaptureRemaining: true},
			},
			Scope: ScopeBoth,
		},
		{
			Key:         "usage",
			NativeName:  "usage",
			Description: "Usage footer or cost summary.",
			TextAliases: []string{"/usage"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "off, tokens, full, or cost", Choices: []string{"off", "tokens", "full", "cost"}},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "stop",
			NativeName:  "stop",
			Description: "Stop the current run.",
			TextAliases: []string{"/stop"},
			Scope:       ScopeBoth,
		},
		{
			Key:         "restart",
			NativeName:  "restart",
			Description: "Restart the gateway.",
			TextAliases: []string{"/restart"},
			Scope:       ScopeBoth,
		},
		{
			Key:         "activation",
			NativeName:  "activation",
			Description: "Set group activation mode.",
			TextAliases: []string{"/activation"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "mention or always", Choices: []string{"mention", "always"}},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "send",
			NativeName:  "send",
			Description: "Set send policy.",
			TextAliases: []string{"/send"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "on, off, or inherit", Choices: []string{"on", "off", "inherit"}},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "reset",
			NativeName:  "reset",
			Description: "Reset the current session.",
			TextAliases: []string{"/reset", "/new"},
			AcceptsArgs: true,
			Scope:       ScopeBoth,
		},
		{
			Key:         "compact",
			Description: "Compact the session context.",
			TextAliases: []string{"/compact"},
			AcceptsArgs: true,
			Scope:       ScopeText,
		},
		{
			Key:         "think",
			NativeName:  "think",
			Description: "Set thinking level.",
			TextAliases: []string{"/think", "/thinking", "/t"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "level", Description: "Thinking level", ChoicesFunc: thinkingLevels},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "verbose",
			NativeName:  "verbose",
			Description: "Toggle verbose mode.",
			TextAliases: []string{"/verbose", "/v"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "on or off", Choices: onOff},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "reasoning",
			NativeName:  "reasoning",
			Description: "Toggle reasoning visibility.",
			TextAliases: []string{"/reasoning", "/reason"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "on, off, or stream", Choices: []string{"on", "off", "stream"}},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "elevated",
			NativeName:  "elevated",
			Description: "Toggle elevated mode.",
			TextAliases: []string{"/elevated", "/elev"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "on, off, ask, or full", Choices: []string{"on", "off", "ask", "full"}},
			},
			ArgsMenu: ArgsMenuAuto,
			Scope:    ScopeBoth,
		},
		{
			Key:         "model",
			NativeName:  "model",
			Description: "Show or set the model.",
			TextAliases: []string{"/model"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "model", Description: "Model id (provider/model or id)"},
			},
			Scope: ScopeBoth,
		},
		{
			Key:         "queue",
			NativeName:  "queue",
			Description: "Adjust queue settings.",
			TextAliases: []string{"/queue"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "mode", Description: "queue mode", Choices: []string{"steer", "interrupt", "followup", "collect", "steer-backlog"}},
				{Name: "options", Description: "debounce:2s cap:25 drop:summarize", CaptureRemaining: true},
			},
			ArgsMenu: &ArgMenu{Arg: "mode", Title: "Choose a queue mode"},
			Scope:    ScopeBoth,
		},
		{
			Key:         "bash",
			NativeName:  "bash",
			Description: "Run host shell commands (host-only).",
			TextAliases: []string{"/bash"},
			AcceptsArgs: true,
			ArgsParsing: ArgsParsingPositional,
			Args: []ArgDefinition{
				{Name: "command", Description: "Shell command", CaptureRemaining: true},
			},
			Scope: ScopeText,
		},
		dockCommand("telegram", "Telegram"),
		dockCommand("discord", "Discord"),
	}
}
