package commands

import "strings"

// ParseArgs decodes the argument text of an invocation. It returns nil for
// blank input. Commands without an argument schema, or that opt out of
// parsing, only get Raw. Otherwise whitespace separated tokens are assigned
// to the arguments in order, and a CaptureRemaining argument takes the rest
// joined by single spaces.
func ParseArgs(def Definition, raw string) *Args {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if len(def.Args) == 0 || def.ArgsParsing == ArgsParsingNone {
		return &Args{Raw: trimmed}
	}
	return &Args{Raw: trimmed, Values: parsePositional(def.Args, trimmed)}
}

func parsePositional(defs []ArgDefinition, raw string) map[string]string {
	values := map[string]string{}
	tokens := strings.Fields(raw)
	index := 0
	for _, arg := range defs {
		if index >= len(tokens) {
			break
		}
		if arg.CaptureRemaining {
			values[arg.Name] = strings.Join(tokens[index:], " ")
			break
		}
		values[arg.Name] = tokens[index]
		index++
	}
	return values
}

// SerializeArgs renders args back into argument text. Raw wins when set;
// otherwise FormatArgs or the positional values are used. The boolean is
// false when nothing renders.
func SerializeArgs(def Definition, args *Args) (string, bool) {
	if args == nil {
		return "", false
	}
	if raw := strings.TrimSpace(args.Raw); raw != "" {
		return raw, true
	}
	if args.Values == nil || len(def.Args) == 0 {
		return "", false
	}
	if def.FormatArgs != nil {
		return def.FormatArgs(args.Values)
	}
	return formatPositional(def.Args, args.Values)
}

func formatPositional(defs []ArgDefinition, values map[string]string) (string, bool) {
	var parts []string
	for _, arg := range defs {
		value, ok := values[arg.Name]
		if !ok {
			continue
		}
		rendered := strings.TrimSpace(value)
		if rendered == "" {
			continue
		}
		parts = append(parts, rendered)
		if arg.CaptureRemaining {
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
