package commands

import (
	"regexp"
	"strings"
	"unicode"
)

// space matches Unicode separators as well as ASCII whitespace, so a
// non-breaking space separates a command from its arguments
const space = `\s\p{Z}\x{FEFF}`

var (
	colonSyntaxRe = regexp.MustCompile(`^/([^` + space + `:]+)[` + space + `]*:(.*)$`)
	mentionRe     = regexp.MustCompile(`^/([^` + space + `@]+)@([^` + space + `]+)(.*)$`)
	commandTokRe  = regexp.MustCompile(`^/([^` + space + `]+)(?:[` + space + `]+([\s\S]+))?$`)
)

// NormalizeOptions carries per-channel normalization settings
type NormalizeOptions struct {
	// BotUsername enables stripping "@<bot>" from "/cmd@<bot>"
	BotUsername string
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// Normalize rewrites chat text into the canonical form of a command:
//
//   - only the first line of a command is kept
//   - "/cmd: args" becomes "/cmd args"
//   - "/cmd@bot" loses the mention when bot is the configured username
//   - a known alias is replaced by its command's primary alias
//
// Text that is not a command is returned trimmed. Normalize is idempotent.
func (r *Registry) Normalize(raw string, opts NormalizeOptions) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "/") {
		return trimmed
	}

	singleLine := trimmed
	if idx := strings.Index(trimmed, "\n"); idx != -1 {
		singleLine = strings.TrimSpace(trimmed[:idx])
	}

	normalized := singleLine
	if match := colonSyntaxRe.FindStringSubmatch(singleLine); match != nil {
		if rest := trimLeft(match[2]); rest != "" {
			normalized = "/" + match[1] + " " + rest
		} else {
			normalized = "/" + match[1]
		}
	}

	body := normalized
	if bot := strings.ToLower(strings.TrimSpace(opts.BotUsername)); bot != "" {
		if match := mentionRe.FindStringSubmatch(normalized); match != nil && strings.ToLower(match[2]) == bot {
			body = "/" + match[1] + match[3]
		}
	}

	if exact, ok := r.aliases[strings.ToLower(body)]; ok {
		return exact.canonical
	}

	match := commandTokRe.FindStringSubmatch(body)
	if match == nil {
		return body
	}
	token, rest := match[1], match[2]
	spec, ok := r.aliases["/"+strings.ToLower(token)]
	if !ok {
		return body
	}
	if rest != "" && !spec.acceptsArgs {
		return body
	}
	if rest = trimLeft(rest); rest != "" {
		return spec.canonical + " " + rest
	}
	return spec.canonical
}

// IsCommandMessage reports whether raw normalizes to something starting
// with "/"
func (r *Registry) IsCommandMessage(raw string) bool {
	return strings.HasPrefix(r.Normalize(raw, NormalizeOptions{}), "/")
}
