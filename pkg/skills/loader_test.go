package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skillDoc(name, description string) string {
	return "---\nname: " + name + "\ndescription: " + description + "\n---\n# " + name + "\n"
}

func newTestLoader(t *testing.T, opts ...Option) (*Loader, map[Source]string) {
	t.Helper()
	root := t.TempDir()
	dirs := map[Source]string{
		SourceExtra:     filepath.Join(root, "extra"),
		SourceBundled:   filepath.Join(root, "bundled"),
		SourceManaged:   filepath.Join(root, "managed"),
		SourceWorkspace: filepath.Join(root, "workspace", "skills"),
	}
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	base := []Option{
		WithWorkspaceDir(filepath.Join(root, "workspace")),
		WithBundledDir(dirs[SourceBundled]),
		WithManagedDir(dirs[SourceManaged]),
		WithExtraDirs(dirs[SourceExtra]),
	}
	loader, err := NewLoader(append(base, opts...)...)
	require.NoError(t, err)
	return loader, dirs
}

func entryNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Skill.Name)
	}
	return names
}

func TestLoaderPrecedence(t *testing.T) {
	loader, dirs := newTestLoader(t)

	writeSkill(t, dirs[SourceExtra], "shared", skillDoc("shared", "from extra"))
	writeSkill(t, dirs[SourceExtra], "extra-only", skillDoc("extra-only", "only extra"))
	writeSkill(t, dirs[SourceBundled], "shared", skillDoc("shared", "from bundled"))
	writeSkill(t, dirs[SourceManaged], "shared", skillDoc("shared", "from managed"))
	writeSkill(t, dirs[SourceManaged], "managed-only", skillDoc("managed-only", "only managed"))
	writeSkill(t, dirs[SourceWorkspace], "shared", skillDoc("shared", "from workspace"))

	report := loader.Load(context.Background())
	require.NoError(t, report.Warnings.ErrorOrNil())

	byName := map[string]Entry{}
	for _, e := range report.Entries {
		byName[e.Skill.Name] = e
	}
	require.Len(t, byName, 3)
	assert.Equal(t, "from workspace", byName["shared"].Skill.Description)
	assert.Equal(t, SourceWorkspace, byName["shared"].Skill.Source)
	assert.Equal(t, "from workspace", byName["shared"].Frontmatter["description"])
	assert.Equal(t, SourceExtra, byName["extra-only"].Skill.Source)
	assert.Equal(t, SourceManaged, byName["managed-only"].Skill.Source)
}

func TestLoaderMissingDirectories(t *testing.T) {
	loader, err := NewLoader(
		WithWorkspaceDir(filepath.Join(t.TempDir(), "nowhere")),
		WithManagedDir(filepath.Join(t.TempDir(), "missing")),
		WithBundledDir(""),
	)
	require.NoError(t, err)

	report := loader.Load(context.Background())
	assert.Empty(t, report.Entries)
	assert.NoError(t, report.Warnings.ErrorOrNil())
}

func TestLoaderIgnorePatterns(t *testing.T) {
	loader, dirs := newTestLoader(t, WithIgnorePatterns("draft-*", " "))
	writeSkill(t, dirs[SourceManaged], "keep", skillDoc("keep", "kept"))
	writeSkill(t, dirs[SourceManaged], "draft-one", skillDoc("draft-one", "ignored"))

	assert.Equal(t, []string{"keep"}, entryNames(loader.LoadEntries(context.Background())))
}

func TestLoaderExtraDirGlobs(t *testing.T) {
	root := t.TempDir()
	for _, pack := range []string{"pack-a", "pack-b"} {
		writeSkill(t, filepath.Join(root, pack), pack+"-skill", skillDoc(pack+"-skill", pack))
	}

	loader, err := NewLoader(
		WithWorkspaceDir(t.TempDir()),
		WithManagedDir(""),
		WithBundledDir(""),
		WithExtraDirs(filepath.Join(root, "pack-*"), ""),
	)
	require.NoError(t, err)

	assert.Len(t, loader.Dirs(), 3)
	assert.ElementsMatch(t, []string{"pack-a-skill", "pack-b-skill"}, entryNames(loader.LoadEntries(context.Background())))
}

func TestLoaderWithDirLoader(t *testing.T) {
	root := t.TempDir()
	present := writeSkill(t, root, "present", skillDoc("present", "on disk"))

	calls := 0
	stub := DirLoaderFunc(func(_ context.Context, dir string, source Source) LoadResult {
		calls++
		if source != SourceWorkspace {
			return FlatList()
		}
		return Wrapped(&WrappedSkills{Skills: []Skill{
			{Name: "present", FilePath: filepath.Join(present, SkillFileName), BaseDir: present, Source: source},
			{Name: "ghost", FilePath: filepath.Join(root, "ghost", SkillFileName), Source: source},
			{Name: ""},
		}})
	})

	loader, err := NewLoader(WithWorkspaceDir(root), WithDirLoader(stub))
	require.NoError(t, err)

	report := loader.Load(context.Background())
	assert.Equal(t, len(loader.Dirs()), calls)
	require.Equal(t, []string{"present", "ghost"}, entryNames(report.Entries))

	ghost := report.Entries[1]
	assert.Empty(t, ghost.Frontmatter)
	assert.Nil(t, ghost.Metadata)
	assert.Equal(t, DefaultInvocationPolicy, ghost.Invocation)
	require.Error(t, report.Warnings.ErrorOrNil())
	assert.Len(t, report.Warnings.Errors, 1)

	_, err = NewLoader(WithDirLoader(nil))
	assert.Error(t, err)
}

func TestLoaderWithConfig(t *testing.T) {
	root := t.TempDir()
	extra := filepath.Join(root, "extra")
	writeSkill(t, extra, "configured", skillDoc("configured", "via config"))
	writeSkill(t, extra, "skipped", skillDoc("skipped", "ignored via config"))

	cfg := &Config{
		ManagedDir: filepath.Join(root, "managed"),
		BundledDir: filepath.Join(root, "bundled"),
		Load:       LoadConfig{ExtraDirs: []string{extra}, Ignore: []string{"skip*"}},
	}
	loader, err := NewLoader(WithWorkspaceDir(root), WithConfig(cfg), WithConfig(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{
		extra,
		filepath.Join(root, "bundled"),
		filepath.Join(root, "managed"),
		filepath.Join(root, "skills"),
	}, loader.DirPaths())
	assert.Equal(t, []string{"configured"}, entryNames(loader.LoadEntries(context.Background())))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "skills"), expandHome("~/skills"))
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
