package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/chatcmd/pkg/commands"
	"github.com/jingkaihe/chatcmd/pkg/skills"
)

// pipeline is the loaded command catalog: built-in commands plus the
// commands synthesized from eligible skills
type pipeline struct {
	registry      *commands.Registry
	config        *commands.Config
	setup         *skills.Setup
	skillCommands []skills.CommandSpec
}

func workspaceDir(v *viper.Viper) (string, error) {
	dir := v.GetString("workspace")
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve workspace %s", dir)
	}
	return abs, nil
}

func newPipeline(ctx context.Context, v *viper.Viper) (*pipeline, error) {
	cfg, err := commands.ConfigFrom(v)
	if err != nil {
		return nil, err
	}

	var opts []commands.Option
	if surfaces := v.GetStringSlice("commands.native_surfaces"); len(surfaces) > 0 {
		opts = append(opts, commands.WithNativeSurfaces(surfaces...))
	}
	registry, err := commands.NewRegistry(commands.BuiltinCommands(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build command registry")
	}

	workspace, err := workspaceDir(v)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		registry: registry,
		config:   cfg,
		setup:    skills.InitializeFrom(ctx, v, workspace),
	}
	p.rebuild(ctx)
	return p, nil
}

// rebuild re-synthesizes skill commands from the current entries
func (p *pipeline) rebuild(ctx context.Context) {
	p.skillCommands = skills.BuildCommandSpecs(ctx, p.setup.Entries(), skills.CommandOptions{
		FilterOptions: p.setup.Filter,
		ReservedNames: p.registry.ReservedNames(),
	})
}

func (p *pipeline) snapshot(ctx context.Context) skills.Snapshot {
	if p.setup.Report == nil {
		return skills.Snapshot{}
	}
	return p.setup.Report.Snapshot(ctx, skills.SnapshotOptions{FilterOptions: p.setup.Filter})
}
