package commands

import (
	"regexp"
	"strings"
)

var (
	neverMatch   = regexp.MustCompile(`$^`)
	aliasTokenRe = regexp.MustCompile(`^/([^` + space + `:]+)(?:[` + space + `]|$)`)

	argsSuffix = `(?:[` + space + `]+.+|[` + space + `]*:[` + space + `]*.*)?`
	bareSuffix = `(?:[` + space + `]*:[` + space + `]*)?`
)

// Detection is a cheap matcher for command-like text: every lowercase alias
// plus one anchored, case-insensitive pattern over all of them
type Detection struct {
	Exact   map[string]struct{}
	Pattern *regexp.Regexp
}

func buildDetection(defs []Definition) *Detection {
	exact := map[string]struct{}{}
	var patterns []string
	for _, def := range defs {
		for _, alias := range def.TextAliases {
			normalized := trimAlias(alias)
			if normalized == "" {
				continue
			}
			exact[normalized] = struct{}{}
			escaped := regexp.QuoteMeta(normalized)
			if def.AcceptsArgs {
				patterns = append(patterns, escaped+argsSuffix)
			} else {
				patterns = append(patterns, escaped+bareSuffix)
			}
		}
	}

	pattern := neverMatch
	if len(patterns) > 0 {
		pattern = regexp.MustCompile(`(?i)^(?:` + strings.Join(patterns, "|") + `)$`)
	}
	return &Detection{Exact: exact, Pattern: pattern}
}

// Matches reports whether lowered text is an exact alias or matches the
// combined pattern
func (d *Detection) Matches(text string) bool {
	if _, ok := d.Exact[text]; ok {
		return true
	}
	return d.Pattern.MatchString(text)
}

// Detection returns the matcher for the built-in aliases. It is built on
// first use and reused for the life of the registry.
func (r *Registry) Detection() *Detection {
	r.detectionOnce.Do(func() {
		r.detection = buildDetection(r.builtins)
	})
	return r.detection
}

// Detect reports whether text is a built-in command invocation
func (r *Registry) Detect(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(r.Normalize(text, NormalizeOptions{})))
	if !strings.HasPrefix(normalized, "/") {
		return false
	}
	return r.Detection().Matches(normalized)
}

// ResolveAlias returns the lowercase alias a command message was invoked
// with, after normalization
func (r *Registry) ResolveAlias(text string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(r.Normalize(text, NormalizeOptions{})))
	if !strings.HasPrefix(normalized, "/") {
		return "", false
	}
	detection := r.Detection()
	if _, ok := detection.Exact[normalized]; ok {
		return normalized, true
	}
	if !detection.Pattern.MatchString(normalized) {
		return "", false
	}
	match := aliasTokenRe.FindStringSubmatch(normalized)
	if match == nil {
		return "", false
	}
	key := "/" + match[1]
	if _, ok := r.aliases[key]; !ok {
		return "", false
	}
	return key, true
}

// ResolveTextCommand resolves chat text to a built-in command and its
// argument text
func (r *Registry) ResolveTextCommand(raw string) (*TextCommand, bool) {
	trimmed := strings.TrimSpace(r.Normalize(raw, NormalizeOptions{}))
	alias, ok := r.ResolveAlias(trimmed)
	if !ok {
		return nil, false
	}
	spec, ok := r.aliases[alias]
	if !ok {
		return nil, false
	}
	def, ok := r.Lookup(spec.key)
	if !ok {
		return nil, false
	}
	if !spec.acceptsArgs || len(alias) > len(trimmed) {
		return &TextCommand{Command: def}, true
	}
	return &TextCommand{Command: def, Args: strings.TrimSpace(trimmed[len(alias):])}, true
}
