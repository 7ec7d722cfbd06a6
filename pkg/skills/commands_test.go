package skills

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeCommandName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello-world", "hello_world"},
		{"Hello World!", "hello_world"},
		{"__already__ok__", "already_ok"},
		{"a--b  c", "a_b_c"},
		{"émoji🔥name", "moji_name"},
		{"!!!", "skill"},
		{"", "skill"},
		{strings.Repeat("x", 40), strings.Repeat("x", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeCommandName(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, SanitizeCommandName(got), "sanitize must be idempotent")
			assert.LessOrEqual(t, len(got), CommandNameMaxLength)
		})
	}
}

func TestResolveUniqueCommandName(t *testing.T) {
	t.Run("free name is kept", func(t *testing.T) {
		assert.Equal(t, "deploy", ResolveUniqueCommandName("deploy", map[string]struct{}{}))
	})

	t.Run("first free suffix", func(t *testing.T) {
		used := map[string]struct{}{"deploy": {}, "deploy_2": {}}
		assert.Equal(t, "deploy_3", ResolveUniqueCommandName("deploy", used))
	})

	t.Run("base is truncated to fit suffix", func(t *testing.T) {
		base := strings.Repeat("a", 32)
		used := map[string]struct{}{base: {}}
		got := ResolveUniqueCommandName(base, used)
		assert.Equal(t, strings.Repeat("a", 30)+"_2", got)
		assert.Len(t, got, CommandNameMaxLength)
	})

	t.Run("exhausted suffixes fall back without a uniqueness check", func(t *testing.T) {
		used := map[string]struct{}{"x": {}}
		for i := 2; i <= 999; i++ {
			used[fmt.Sprintf("x_%d", i)] = struct{}{}
		}
		used["x_x"] = struct{}{}
		assert.Equal(t, "x_x", ResolveUniqueCommandName("x", used))
	})
}

func invocable(name, description string) Entry {
	e := entryWith(name, nil)
	e.Skill.Description = description
	return e
}

func TestBuildCommandSpecs(t *testing.T) {
	ctx := context.Background()
	base := FilterOptions{Eligibility: testEligibility("linux"), LookupEnv: noEnv}

	t.Run("collisions get suffixes in input order", func(t *testing.T) {
		specs := BuildCommandSpecs(ctx, []Entry{
			invocable("hello-world", "first"),
			invocable("hello_world", "second"),
		}, CommandOptions{FilterOptions: base})
		require.Len(t, specs, 2)
		assert.Equal(t, CommandSpec{Name: "hello_world", SkillName: "hello-world", Description: "first"}, specs[0])
		assert.Equal(t, CommandSpec{Name: "hello_world_2", SkillName: "hello_world", Description: "second"}, specs[1])
	})

	t.Run("reserved names are avoided case-insensitively", func(t *testing.T) {
		specs := BuildCommandSpecs(ctx, []Entry{invocable("help", "")},
			CommandOptions{FilterOptions: base, ReservedNames: []string{"HELP", "status"}})
		require.Len(t, specs, 1)
		assert.Equal(t, "help_2", specs[0].Name)
		assert.Equal(t, "help", specs[0].Description, "blank description falls back to skill name")
	})

	t.Run("non user-invocable skills are skipped", func(t *testing.T) {
		hidden := invocable("hidden", "x")
		hidden.Invocation.UserInvocable = false
		specs := BuildCommandSpecs(ctx, []Entry{hidden, invocable("shown", "y")}, CommandOptions{FilterOptions: base})
		require.Len(t, specs, 1)
		assert.Equal(t, "shown", specs[0].Name)
	})

	t.Run("ineligible skills are skipped", func(t *testing.T) {
		mac := entryWith("mac-only", &Metadata{OS: []string{"darwin"}})
		specs := BuildCommandSpecs(ctx, []Entry{mac}, CommandOptions{FilterOptions: base})
		assert.Empty(t, specs)
	})

	t.Run("no case-insensitive duplicates", func(t *testing.T) {
		var entries []Entry
		for _, name := range []string{"Foo", "foo", "FOO", "f-o-o", "foo_2", "status"} {
			entries = append(entries, invocable(name, ""))
		}
		specs := BuildCommandSpecs(ctx, entries, CommandOptions{FilterOptions: base, ReservedNames: []string{"Status"}})
		seen := map[string]bool{"status": true}
		for _, spec := range specs {
			lower := strings.ToLower(spec.Name)
			assert.False(t, seen[lower], "duplicate command %s", spec.Name)
			seen[lower] = true
			assert.LessOrEqual(t, len(spec.Name), CommandNameMaxLength)
		}
		assert.Len(t, specs, len(entries))
	})
}

func TestResolveCommandInvocation(t *testing.T) {
	specs := []CommandSpec{
		{Name: "deploy", SkillName: "deploy-app", Description: "Deploy"},
		{Name: "lint", SkillName: "lint", Description: "Lint"},
	}

	inv := ResolveCommandInvocation("  /Deploy   to staging  ", specs)
	require.NotNil(t, inv)
	assert.Equal(t, "deploy-app", inv.Command.SkillName)
	assert.Equal(t, "to staging", inv.Args)
	assert.Equal(t, "Use the \"deploy-app\" skill for this request.\n\nUser input:\nto staging", RewriteInvocationPrompt(inv))

	inv = ResolveCommandInvocation("/lint", specs)
	require.NotNil(t, inv)
	assert.Empty(t, inv.Args)
	assert.Equal(t, "Use the \"lint\" skill for this request.", RewriteInvocationPrompt(inv))

	assert.Nil(t, ResolveCommandInvocation("/unknown", specs))
	assert.Nil(t, ResolveCommandInvocation("deploy now", specs))
	assert.Nil(t, ResolveCommandInvocation("/", specs))
}
