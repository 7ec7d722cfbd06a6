package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/chatcmd/pkg/logger"
	"github.com/pkg/errors"
)

// SkillFileName is the file that marks a directory as a skill
const SkillFileName = "SKILL.md"

type resultKind int

const (
	resultFlatList resultKind = iota
	resultWrapped
)

// WrappedSkills is the {skills: [...]} shape some directory loaders return
type WrappedSkills struct {
	Skills []Skill
}

// LoadResult is what a DirLoader returns for one directory: either a flat
// list of skills or a wrapped object holding them
type LoadResult struct {
	kind    resultKind
	flat    []Skill
	wrapped *WrappedSkills
}

// FlatList builds a LoadResult from a plain list of skills
func FlatList(skills ...Skill) LoadResult {
	return LoadResult{kind: resultFlatList, flat: skills}
}

// Wrapped builds a LoadResult from a wrapped skills object
func Wrapped(w *WrappedSkills) LoadResult {
	return LoadResult{kind: resultWrapped, wrapped: w}
}

// Skills normalizes either shape into one flat list
func (r LoadResult) Skills() []Skill {
	switch r.kind {
	case resultWrapped:
		if r.wrapped == nil {
			return nil
		}
		return r.wrapped.Skills
	default:
		return r.flat
	}
}

// DirLoader lists the skills found in a single directory
type DirLoader interface {
	LoadDir(ctx context.Context, dir string, source Source) LoadResult
}

// DirLoaderFunc adapts a function to the DirLoader interface
type DirLoaderFunc func(ctx context.Context, dir string, source Source) LoadResult

// LoadDir calls f
func (f DirLoaderFunc) LoadDir(ctx context.Context, dir string, source Source) LoadResult {
	return f(ctx, dir, source)
}

// FSDirLoader scans <dir>/*/SKILL.md on the local filesystem. Symlinked
// skill directories are followed; symlinks to files and broken links are
// ignored.
type FSDirLoader struct{}

// LoadDir implements DirLoader
func (FSDirLoader) LoadDir(ctx context.Context, dir string, source Source) LoadResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("dir", dir).Debug("skipping unreadable skills directory")
		return FlatList()
	}

	var skills []Skill
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, SkillFileName)
		skill, err := describeSkill(skillPath, entry.Name())
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", skillPath).Debug("skipping skill directory")
			continue
		}
		skill.BaseDir = entryPath
		skill.Source = source
		skills = append(skills, skill)
	}

	return FlatList(skills...)
}

// describeSkill reads the name and description of a skill. The YAML
// frontmatter is tried first, then the line grammar, and the directory name
// is the last resort for the name.
func describeSkill(path, dirName string) (Skill, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Skill{}, errors.Wrap(err, "failed to stat skill file")
	}
	if info.IsDir() {
		return Skill{}, errors.Errorf("%s is a directory", path)
	}

	skill := Skill{Name: dirName, FilePath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		// still discoverable; the entry degrades to empty frontmatter later
		return skill, nil
	}

	var name, description string
	if data, err := parseYAMLFrontmatter(content); err == nil && data != nil {
		name, _ = data["name"].(string)
		description, _ = data["description"].(string)
	}
	if name == "" || description == "" {
		fm := ParseFrontmatter(string(content))
		if name == "" {
			name = fm["name"]
		}
		if description == "" {
			description = fm["description"]
		}
	}

	if name = strings.TrimSpace(name); name != "" {
		skill.Name = name
	}
	skill.Description = strings.TrimSpace(description)
	return skill, nil
}
