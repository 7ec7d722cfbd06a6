package skills

import (
	"context"

	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/logger"
)

// Setup is everything a caller needs to work with the configured skills
type Setup struct {
	Config  *Config
	Loader  *Loader
	Report  *Report
	Filter  FilterOptions
	Enabled bool
}

// Initialize loads skills for workspaceDir according to the global viper
// configuration. It reads skills.* and respects the --no-skills flag (bound
// to no_skills). A disabled or misconfigured setup has Enabled false.
func Initialize(ctx context.Context, workspaceDir string) *Setup {
	return InitializeFrom(ctx, viper.GetViper(), workspaceDir)
}

// InitializeFrom is Initialize against an explicit viper instance
func InitializeFrom(ctx context.Context, v *viper.Viper, workspaceDir string) *Setup {
	log := logger.G(ctx).WithField("workspace", workspaceDir)

	cfg, err := ConfigFrom(v)
	if err != nil {
		log.WithError(err).Warn("failed to read skills configuration")
		return &Setup{}
	}

	setup := &Setup{Config: cfg}
	if !cfg.IsEnabled() || v.GetBool("no_skills") {
		log.Debug("skills disabled")
		return setup
	}

	loader, err := NewLoader(WithWorkspaceDir(workspaceDir), WithConfig(cfg))
	if err != nil {
		log.WithError(err).Warn("failed to create skill loader")
		return setup
	}

	setup.Loader = loader
	setup.Report = loader.Load(ctx)
	setup.Filter = FilterOptions{
		Config:       cfg,
		ConfigLookup: ViperLookup(v),
	}
	if v.IsSet("skills.allowed") {
		allowed := cfg.Allowed
		if allowed == nil {
			allowed = []string{}
		}
		setup.Filter.SkillFilter = &allowed
	}
	setup.Enabled = true

	log.WithField("skills", len(setup.Report.Entries)).Debug("skills initialized")
	return setup
}

// Entries returns the loaded entries, or nil when skills are disabled
func (s *Setup) Entries() []Entry {
	if s == nil || !s.Enabled || s.Report == nil {
		return nil
	}
	return s.Report.Entries
}

// Reload reloads entries from disk with the same loader
func (s *Setup) Reload(ctx context.Context) {
	if s == nil || !s.Enabled || s.Loader == nil {
		return
	}
	s.Report = s.Loader.Load(ctx)
}
