package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/chatcmd/pkg/logger"
	"github.com/jingkaihe/chatcmd/pkg/telemetry"
)

// BundledDirEnv overrides the bundled skills directory
const BundledDirEnv = "CHATCMD_BUNDLED_SKILLS_DIR"

// Loader reads skills from the four source layers and merges them by name
type Loader struct {
	workspaceDir string
	bundledDir   string
	managedDir   string
	extraDirs    []string
	ignore       []glob.Glob
	dirLoader    DirLoader
}

// Option is a function that configures a Loader
type Option func(*Loader) error

// WithWorkspaceDir sets the workspace; its skills/ subdirectory has the
// highest precedence
func WithWorkspaceDir(dir string) Option {
	return func(l *Loader) error {
		l.workspaceDir = dir
		return nil
	}
}

// WithBundledDir sets the directory of skills shipped with the binary
func WithBundledDir(dir string) Option {
	return func(l *Loader) error {
		l.bundledDir = dir
		return nil
	}
}

// WithManagedDir sets the directory of user-installed skills
func WithManagedDir(dir string) Option {
	return func(l *Loader) error {
		l.managedDir = dir
		return nil
	}
}

// WithExtraDirs adds lowest-precedence directories. Entries may contain glob
// patterns and a leading ~/.
func WithExtraDirs(dirs ...string) Option {
	return func(l *Loader) error {
		expanded, err := expandExtraDirs(dirs)
		if err != nil {
			return err
		}
		l.extraDirs = append(l.extraDirs, expanded...)
		return nil
	}
}

// WithIgnorePatterns excludes skills whose name matches any glob pattern
func WithIgnorePatterns(patterns ...string) Option {
	return func(l *Loader) error {
		for _, pattern := range patterns {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			g, err := glob.Compile(pattern)
			if err != nil {
				return errors.Wrapf(err, "invalid skill ignore pattern %q", pattern)
			}
			l.ignore = append(l.ignore, g)
		}
		return nil
	}
}

// WithDirLoader replaces the filesystem directory loader
func WithDirLoader(dl DirLoader) Option {
	return func(l *Loader) error {
		if dl == nil {
			return errors.New("dir loader must not be nil")
		}
		l.dirLoader = dl
		return nil
	}
}

// WithConfig applies the directory settings of a skills Config
func WithConfig(cfg *Config) Option {
	return func(l *Loader) error {
		if cfg == nil {
			return nil
		}
		if cfg.BundledDir != "" {
			l.bundledDir = expandHome(cfg.BundledDir)
		}
		if cfg.ManagedDir != "" {
			l.managedDir = expandHome(cfg.ManagedDir)
		}
		if err := WithExtraDirs(cfg.Load.ExtraDirs...)(l); err != nil {
			return err
		}
		return WithIgnorePatterns(cfg.Load.Ignore...)(l)
	}
}

// DefaultManagedDir returns ~/.chatcmd/skills
func DefaultManagedDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, ".chatcmd", "skills"), nil
}

// NewLoader creates a loader. Without options it reads ./skills, the
// managed directory and the bundled directory from BundledDirEnv.
func NewLoader(opts ...Option) (*Loader, error) {
	managedDir, err := DefaultManagedDir()
	if err != nil {
		return nil, err
	}

	l := &Loader{
		workspaceDir: ".",
		managedDir:   managedDir,
		bundledDir:   os.Getenv(BundledDirEnv),
		dirLoader:    FSDirLoader{},
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, errors.Wrap(err, "failed to apply skill loader option")
		}
	}
	return l, nil
}

// WorkspaceSkillsDir returns <workspace>/skills
func (l *Loader) WorkspaceSkillsDir() string {
	return filepath.Join(l.workspaceDir, "skills")
}

// SourceDir is one directory scanned at a given precedence
type SourceDir struct {
	Dir    string
	Source Source
}

// Dirs lists the scanned directories in ascending precedence
func (l *Loader) Dirs() []SourceDir {
	var dirs []SourceDir
	for _, dir := range l.extraDirs {
		dirs = append(dirs, SourceDir{Dir: dir, Source: SourceExtra})
	}
	if l.bundledDir != "" {
		dirs = append(dirs, SourceDir{Dir: l.bundledDir, Source: SourceBundled})
	}
	if l.managedDir != "" {
		dirs = append(dirs, SourceDir{Dir: l.managedDir, Source: SourceManaged})
	}
	dirs = append(dirs, SourceDir{Dir: l.WorkspaceSkillsDir(), Source: SourceWorkspace})
	return dirs
}

// DirPaths lists the scanned directory paths in ascending precedence
func (l *Loader) DirPaths() []string {
	dirs := l.Dirs()
	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, d.Dir)
	}
	return paths
}

// Report is the outcome of one load. Warnings lists skill files that could
// not be read; their entries are still present with empty frontmatter.
type Report struct {
	Entries  []Entry
	Warnings *multierror.Error
}

func (l *Loader) ignored(name string) bool {
	for _, g := range l.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Load scans every source, merges skills by name with later sources
// replacing earlier ones entirely, and parses each skill file. Merged
// entries keep the position at which their name was first seen.
func (l *Loader) Load(ctx context.Context) *Report {
	report := &Report{}
	err := telemetry.WithSpan(ctx, "skills.load", func(ctx context.Context) error {
		order := []string{}
		merged := map[string]Skill{}
		counts := map[Source]int{}

		for _, sd := range l.Dirs() {
			for _, skill := range l.dirLoader.LoadDir(ctx, sd.Dir, sd.Source).Skills() {
				if skill.Name == "" || l.ignored(skill.Name) {
					continue
				}
				if _, exists := merged[skill.Name]; !exists {
					order = append(order, skill.Name)
				} else {
					logger.G(ctx).WithField("skill", skill.Name).WithField("source", sd.Source).Debug("skill overridden by higher precedence source")
					telemetry.AddEvent(ctx, "skill.overridden",
						attribute.String("skill", skill.Name),
						attribute.String("source", string(sd.Source)),
					)
				}
				merged[skill.Name] = skill
				counts[sd.Source]++
			}
		}

		report.Entries = make([]Entry, 0, len(order))
		for _, name := range order {
			skill := merged[name]
			content, err := os.ReadFile(skill.FilePath)
			if err != nil {
				report.Warnings = multierror.Append(report.Warnings, errors.Wrapf(err, "failed to read skill %q", name))
				report.Entries = append(report.Entries, Entry{
					Skill:       skill,
					Frontmatter: Frontmatter{},
					Invocation:  DefaultInvocationPolicy,
				})
				continue
			}
			report.Entries = append(report.Entries, NewEntry(skill, content))
		}

		telemetry.SetAttributes(ctx,
			attribute.Int("skills.extra", counts[SourceExtra]),
			attribute.Int("skills.bundled", counts[SourceBundled]),
			attribute.Int("skills.managed", counts[SourceManaged]),
			attribute.Int("skills.workspace", counts[SourceWorkspace]),
			attribute.Int("skills.merged", len(report.Entries)),
		)
		return report.Warnings.ErrorOrNil()
	})
	if err != nil {
		logger.G(ctx).WithError(err).Debug("some skill files could not be read")
	}
	return report
}

// LoadEntries is Load without the warnings
func (l *Loader) LoadEntries(ctx context.Context) []Entry {
	return l.Load(ctx).Entries
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func expandExtraDirs(dirs []string) ([]string, error) {
	var out []string
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		dir = expandHome(dir)
		if !strings.ContainsAny(dir, "*?[{") {
			out = append(out, dir)
			continue
		}
		matches, err := doublestar.FilepathGlob(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid extra skills directory pattern %q", dir)
		}
		out = append(out, matches...)
	}
	return out, nil
}
