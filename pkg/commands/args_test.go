package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeArgs = Definition{
	Key:         "demo",
	NativeName:  "demo",
	AcceptsArgs: true,
	ArgsParsing: ArgsParsingPositional,
	Args: []ArgDefinition{
		{Name: "first"},
		{Name: "second"},
		{Name: "rest", CaptureRemaining: true},
	},
}

func TestParseArgs(t *testing.T) {
	t.Run("blank input", func(t *testing.T) {
		assert.Nil(t, ParseArgs(threeArgs, "   "))
	})

	t.Run("positional with capture", func(t *testing.T) {
		args := ParseArgs(threeArgs, "  one   two three   four ")
		require.NotNil(t, args)
		assert.Equal(t, "one   two three   four", args.Raw)
		assert.Equal(t, map[string]string{"first": "one", "second": "two", "rest": "three four"}, args.Values)
	})

	t.Run("fewer tokens than args", func(t *testing.T) {
		args := ParseArgs(threeArgs, "one")
		require.NotNil(t, args)
		assert.Equal(t, map[string]string{"first": "one"}, args.Values)
	})

	t.Run("no schema keeps raw only", func(t *testing.T) {
		args := ParseArgs(Definition{Key: "status", AcceptsArgs: true}, "anything goes")
		require.NotNil(t, args)
		assert.Equal(t, "anything goes", args.Raw)
		assert.Nil(t, args.Values)
	})

	t.Run("parsing none keeps raw only", func(t *testing.T) {
		def := threeArgs
		def.ArgsParsing = ArgsParsingNone
		args := ParseArgs(def, "a b")
		require.NotNil(t, args)
		assert.Nil(t, args.Values)
	})
}

func TestSerializeArgs(t *testing.T) {
	t.Run("nil args", func(t *testing.T) {
		_, ok := SerializeArgs(threeArgs, nil)
		assert.False(t, ok)
	})

	t.Run("raw wins", func(t *testing.T) {
		text, ok := SerializeArgs(threeArgs, &Args{Raw: " raw text ", Values: map[string]string{"first": "x"}})
		assert.True(t, ok)
		assert.Equal(t, "raw text", text)
	})

	t.Run("positional skips blanks", func(t *testing.T) {
		text, ok := SerializeArgs(threeArgs, &Args{Values: map[string]string{"first": " a ", "second": "  ", "rest": "c d"}})
		assert.True(t, ok)
		assert.Equal(t, "a c d", text)
	})

	t.Run("nothing to render", func(t *testing.T) {
		_, ok := SerializeArgs(threeArgs, &Args{Values: map[string]string{"second": ""}})
		assert.False(t, ok)
		_, ok = SerializeArgs(Definition{Key: "x"}, &Args{Values: map[string]string{"a": "b"}})
		assert.False(t, ok)
	})

	t.Run("format override", func(t *testing.T) {
		def := threeArgs
		def.FormatArgs = func(values map[string]string) (string, bool) {
			return values["second"] + "=" + values["first"], true
		}
		text, ok := SerializeArgs(def, &Args{Values: map[string]string{"first": "1", "second": "2"}})
		assert.True(t, ok)
		assert.Equal(t, "2=1", text)
	})
}

func TestArgsRoundTrip(t *testing.T) {
	args := ParseArgs(threeArgs, "foo bar baz")
	require.NotNil(t, args)

	text, ok := SerializeArgs(threeArgs, &Args{Values: args.Values})
	require.True(t, ok)
	assert.Equal(t, "foo bar baz", text)

	text, ok = SerializeArgs(threeArgs, args)
	require.True(t, ok)
	assert.Equal(t, "foo bar baz", text)
}

func TestBuildCommandText(t *testing.T) {
	assert.Equal(t, "/status", BuildCommandText("status", ""))
	assert.Equal(t, "/status", BuildCommandText("status", "   "))
	assert.Equal(t, "/think high", BuildCommandText("think", " high "))

	assert.Equal(t, "/demo a b", BuildCommandTextFromArgs(threeArgs, &Args{Values: map[string]string{"first": "a", "second": "b"}}))
	assert.Equal(t, "/demo", BuildCommandTextFromArgs(threeArgs, nil))
	assert.Equal(t, "/compact", BuildCommandTextFromArgs(Definition{Key: "compact"}, nil))
}
