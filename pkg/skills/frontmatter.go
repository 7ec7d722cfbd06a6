package skills

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	frontmatterDelimiter = "---"
	metadataKey          = "metadata"
	metadataNamespace    = "clawdbot"

	userInvocableKey          = "user-invocable"
	disableModelInvocationKey = "disable-model-invocation"
)

var frontmatterLineRe = regexp.MustCompile(`^([\w-]+):\s*(.*)$`)

func normalizeNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func stripQuotes(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// ParseFrontmatter extracts the flat key/value header block of a skill file.
// Content without a leading, terminated "---" block yields an empty map.
func ParseFrontmatter(content string) Frontmatter {
	fm := Frontmatter{}
	normalized := normalizeNewlines(content)
	if !strings.HasPrefix(normalized, frontmatterDelimiter) {
		return fm
	}
	end := strings.Index(normalized[len(frontmatterDelimiter):], "\n"+frontmatterDelimiter)
	if end == -1 {
		return fm
	}
	end += len(frontmatterDelimiter)
	if end < 4 {
		return fm
	}
	block := normalized[4:end]

	for _, line := range strings.Split(block, "\n") {
		match := frontmatterLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key := match[1]
		value := stripQuotes(strings.TrimSpace(match[2]))
		if key == "" || value == "" {
			continue
		}
		fm[key] = value
	}
	return fm
}

// ExtractBody removes the frontmatter block and returns the markdown body
func ExtractBody(content string) string {
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return content
	}

	lines := strings.Split(content, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
}

// parseYAMLFrontmatter decodes the frontmatter block as YAML using goldmark-meta
func parseYAMLFrontmatter(content []byte) (map[string]interface{}, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, err
	}
	return meta.TryGet(pctx)
}

// ParseStructuredMetadata decodes a metadata block written as nested YAML
// rather than a single JSON line, and returns it re-encoded as JSON. It
// returns "" when the file has no such block.
func ParseStructuredMetadata(content []byte) string {
	data, err := parseYAMLFrontmatter(content)
	if err != nil || data == nil {
		return ""
	}
	raw, ok := data[metadataKey]
	if !ok {
		return ""
	}
	normalized, ok := normalizeYAMLValue(raw).(map[string]interface{})
	if !ok {
		return ""
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// normalizeYAMLValue converts the map[interface{}]interface{} values produced
// by the YAML decoder into JSON-encodable maps.
func normalizeYAMLValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[fmt.Sprint(k)] = normalizeYAMLValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = normalizeYAMLValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	default:
		return value
	}
}

// normalizeStringList accepts a JSON array or a comma separated string and
// returns the trimmed, non-empty items.
func normalizeStringList(value gjson.Result) []string {
	var items []string
	switch {
	case value.IsArray():
		for _, item := range value.Array() {
			items = append(items, item.String())
		}
	case value.Type == gjson.String:
		items = strings.Split(value.Str, ",")
	default:
		return nil
	}

	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func stringField(obj gjson.Result, key string) string {
	value := obj.Get(key)
	if value.Type != gjson.String {
		return ""
	}
	return value.Str
}

func parseInstallSpec(raw gjson.Result) (InstallSpec, bool) {
	if !raw.IsObject() {
		return InstallSpec{}, false
	}
	kind := stringField(raw, "kind")
	if raw.Get("kind").Type != gjson.String {
		kind = stringField(raw, "type")
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "brew", "node", "go", "uv":
	default:
		return InstallSpec{}, false
	}

	spec := InstallSpec{
		Kind:    kind,
		ID:      stringField(raw, "id"),
		Label:   stringField(raw, "label"),
		Formula: stringField(raw, "formula"),
		Package: stringField(raw, "package"),
		Module:  stringField(raw, "module"),
	}
	if bins := normalizeStringList(raw.Get("bins")); len(bins) > 0 {
		spec.Bins = bins
	}
	return spec, true
}

// ResolveMetadata decodes the JSON extension block stored under the
// "metadata" key. Malformed JSON, a non-object payload or a missing
// extension object yield nil. Fields of the wrong type are dropped
// individually.
func ResolveMetadata(fm Frontmatter) *Metadata {
	raw := fm[metadataKey]
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil
	}
	obj := parsed.Get(metadataNamespace)
	if !obj.IsObject() {
		return nil
	}

	md := &Metadata{
		Emoji:      stringField(obj, "emoji"),
		Homepage:   stringField(obj, "homepage"),
		SkillKey:   stringField(obj, "skillKey"),
		PrimaryEnv: stringField(obj, "primaryEnv"),
	}
	if always := obj.Get("always"); always.IsBool() {
		value := always.Bool()
		md.Always = &value
	}
	if osList := normalizeStringList(obj.Get("os")); len(osList) > 0 {
		md.OS = osList
	}
	if requires := obj.Get("requires"); requires.IsObject() {
		md.Requires = &Requirements{
			Bins:    normalizeStringList(requires.Get("bins")),
			AnyBins: normalizeStringList(requires.Get("anyBins")),
			Env:     normalizeStringList(requires.Get("env")),
			Config:  normalizeStringList(requires.Get("config")),
		}
	}
	if install := obj.Get("install"); install.IsArray() {
		for _, item := range install.Array() {
			if spec, ok := parseInstallSpec(item); ok {
				md.Install = append(md.Install, spec)
			}
		}
	}
	return md
}

// ParseBool parses a tolerant boolean: true/1/yes/on and false/0/no/off,
// case-insensitively. Anything else returns fallback.
func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

// ResolveInvocationPolicy reads the user-invocable and
// disable-model-invocation flags
func ResolveInvocationPolicy(fm Frontmatter) InvocationPolicy {
	return InvocationPolicy{
		UserInvocable:          ParseBool(fm[userInvocableKey], DefaultInvocationPolicy.UserInvocable),
		DisableModelInvocation: ParseBool(fm[disableModelInvocationKey], DefaultInvocationPolicy.DisableModelInvocation),
	}
}

// NewEntry parses the content of a skill file into an Entry. A metadata
// block written as nested YAML is used only when no single-line metadata
// value is present; a malformed single-line value leaves Metadata nil.
func NewEntry(skill Skill, content []byte) Entry {
	fm := ParseFrontmatter(string(content))
	md := ResolveMetadata(fm)
	if _, present := fm[metadataKey]; !present {
		if structured := ParseStructuredMetadata(content); structured != "" {
			candidate := Frontmatter{metadataKey: structured}
			if resolved := ResolveMetadata(candidate); resolved != nil {
				fm[metadataKey] = structured
				md = resolved
			}
		}
	}
	return Entry{
		Skill:       skill,
		Frontmatter: fm,
		Metadata:    md,
		Invocation:  ResolveInvocationPolicy(fm),
	}
}
