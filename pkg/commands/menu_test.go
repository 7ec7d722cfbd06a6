package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtin(t *testing.T, key string) Definition {
	t.Helper()
	def, ok := Default().Lookup(key)
	require.True(t, ok, key)
	return def
}

func TestResolveArgChoices(t *testing.T) {
	think := builtin(t, "think")
	level := think.Args[0]

	assert.Equal(t, []string{"off", "minimal", "low", "medium", "high"},
		ResolveArgChoices(think, level, ChoiceContext{}))
	assert.Contains(t, ResolveArgChoices(think, level, ChoiceContext{Provider: "openai", Model: "gpt-5.1"}), "xhigh")
	assert.Contains(t, ResolveArgChoices(think, level, ChoiceContext{Config: &Config{Provider: "openai-codex", Model: "gpt-5"}}), "xhigh")

	usage := builtin(t, "usage")
	choices := ResolveArgChoices(usage, usage.Args[0], ChoiceContext{})
	assert.Equal(t, []string{"off", "tokens", "full", "cost"}, choices)
	choices[0] = "mutated"
	assert.Equal(t, "off", ResolveArgChoices(usage, usage.Args[0], ChoiceContext{})[0])

	assert.Nil(t, ResolveArgChoices(usage, ArgDefinition{Name: "free"}, ChoiceContext{}))
}

func TestResolveArgMenu(t *testing.T) {
	usage := builtin(t, "usage")

	menu := ResolveArgMenu(usage, nil, nil)
	require.NotNil(t, menu)
	assert.Equal(t, "mode", menu.Arg.Name)
	assert.Equal(t, []string{"off", "tokens", "full", "cost"}, menu.Choices)
	assert.Empty(t, menu.Title)

	assert.Nil(t, ResolveArgMenu(usage, ParseArgs(usage, "full"), nil), "value already given")
	assert.Nil(t, ResolveArgMenu(usage, &Args{Raw: "full"}, nil), "raw without values")

	queue := builtin(t, "queue")
	menu = ResolveArgMenu(queue, nil, nil)
	require.NotNil(t, menu)
	assert.Equal(t, "Choose a queue mode", menu.Title)

	assert.Nil(t, ResolveArgMenu(builtin(t, "model"), nil, nil), "no menu configured")
	assert.Nil(t, ResolveArgMenu(Definition{
		Key:         "none",
		ArgsParsing: ArgsParsingNone,
		Args:        []ArgDefinition{{Name: "a", Choices: []string{"x"}}},
		ArgsMenu:    ArgsMenuAuto,
	}, nil, nil), "parsing disabled")
	assert.Nil(t, ResolveArgMenu(Definition{
		Key:      "nochoices",
		Args:     []ArgDefinition{{Name: "a"}},
		ArgsMenu: ArgsMenuAuto,
	}, nil, nil), "no argument has choices")
	assert.Nil(t, ResolveArgMenu(Definition{
		Key:      "missing",
		Args:     []ArgDefinition{{Name: "a", Choices: []string{"x"}}},
		ArgsMenu: &ArgMenu{Arg: "b"},
	}, nil, nil), "menu names an unknown argument")
}

func TestConfigFrom(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
provider: openai
model: gpt-5
commands:
  text: false
  bash: true
`)))

	cfg, err := ConfigFrom(v)
	require.NoError(t, err)
	assert.False(t, cfg.TextEnabled())
	assert.True(t, cfg.NativeEnabled())
	assert.True(t, cfg.Bash)
	assert.False(t, cfg.Config)

	provider, model := cfg.ProviderModel()
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "gpt-5", model)

	var nilCfg *Config
	provider, model = nilCfg.ProviderModel()
	assert.Equal(t, DefaultProvider, provider)
	assert.Equal(t, DefaultModel, model)
	assert.True(t, nilCfg.TextEnabled())
}
