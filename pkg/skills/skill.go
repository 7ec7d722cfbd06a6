// Package skills discovers user-extensible skills and turns them into chat
// commands. Skills are packaged as directories containing a SKILL.md file
// whose leading frontmatter block describes the skill, its platform and
// binary requirements, and whether users or the model may invoke it.
package skills

import (
	"os"
)

// Source identifies the directory layer a skill was loaded from
type Source string

const (
	SourceExtra     Source = "extra"     // skills.load.extra_dirs (lowest precedence)
	SourceBundled   Source = "bundled"   // shipped with the binary
	SourceManaged   Source = "managed"   // ~/.chatcmd/skills
	SourceWorkspace Source = "workspace" // <workspace>/skills (highest precedence)
)

// Skill describes a discovered skill on disk
type Skill struct {
	Name        string // Unique name within a merge
	Description string // Brief description for menus and prompts
	FilePath    string // Full path to SKILL.md
	BaseDir     string // Full path to the skill directory
	Source      Source // Layer the skill came from
}

// Content reads the SKILL.md body (without frontmatter) from disk
func (s Skill) Content() (string, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return "", err
	}
	return ExtractBody(string(data)), nil
}

// Frontmatter is the flat key/value header block of a SKILL.md file
type Frontmatter map[string]string

// InstallSpec describes how to install a dependency of a skill
type InstallSpec struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Kind    string   `json:"kind" yaml:"kind"` // brew, node, go or uv
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Bins    []string `json:"bins,omitempty" yaml:"bins,omitempty"`
	Formula string   `json:"formula,omitempty" yaml:"formula,omitempty"`
	Package string   `json:"package,omitempty" yaml:"package,omitempty"`
	Module  string   `json:"module,omitempty" yaml:"module,omitempty"`
}

// Requirements lists what must be present for a skill to be eligible
type Requirements struct {
	Bins    []string `json:"bins" yaml:"bins"`       // all must exist
	AnyBins []string `json:"anyBins" yaml:"anyBins"` // at least one must exist
	Env     []string `json:"env" yaml:"env"`         // env vars (or entry config) must be set
	Config  []string `json:"config" yaml:"config"`   // dotted config paths must be truthy
}

// Metadata is the structured extension block stored as JSON under the
// "metadata" frontmatter key
type Metadata struct {
	Always     *bool         `json:"always,omitempty" yaml:"always,omitempty"`
	Emoji      string        `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Homepage   string        `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	SkillKey   string        `json:"skillKey,omitempty" yaml:"skillKey,omitempty"`
	PrimaryEnv string        `json:"primaryEnv,omitempty" yaml:"primaryEnv,omitempty"`
	OS         []string      `json:"os,omitempty" yaml:"os,omitempty"`
	Requires   *Requirements `json:"requires,omitempty" yaml:"requires,omitempty"`
	Install    []InstallSpec `json:"install,omitempty" yaml:"install,omitempty"`
}

// InvocationPolicy controls who may invoke a skill
type InvocationPolicy struct {
	UserInvocable          bool `json:"userInvocable" yaml:"userInvocable"`
	DisableModelInvocation bool `json:"disableModelInvocation" yaml:"disableModelInvocation"`
}

// DefaultInvocationPolicy is used when the frontmatter says nothing
var DefaultInvocationPolicy = InvocationPolicy{
	UserInvocable:          true,
	DisableModelInvocation: false,
}

// Entry is a loaded skill together with its parsed frontmatter
type Entry struct {
	Skill       Skill
	Frontmatter Frontmatter
	Metadata    *Metadata
	Invocation  InvocationPolicy
}

// Key returns the identity used for per-skill configuration. It is the
// metadata skillKey when set, otherwise the skill name.
func (e Entry) Key() string {
	if e.Metadata != nil && e.Metadata.SkillKey != "" {
		return e.Metadata.SkillKey
	}
	return e.Skill.Name
}

// CommandSpec is a chat command synthesized from a user-invocable skill
type CommandSpec struct {
	Name        string `json:"name" yaml:"name"`
	SkillName   string `json:"skillName" yaml:"skillName"`
	Description string `json:"description" yaml:"description"`
}
