package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	r := Default()

	tests := []struct {
		name     string
		input    string
		bot      string
		expected string
	}{
		{name: "plain text is trimmed", input: "  hello there  ", expected: "hello there"},
		{name: "canonical alias", input: "/status", expected: "/status"},
		{name: "case is folded for aliases", input: "/STATUS", expected: "/status"},
		{name: "colon syntax", input: "/Status: please", expected: "/status please"},
		{name: "colon without args", input: "/help:", expected: "/help"},
		{name: "colon with spaces", input: "/think :   high", expected: "/think high"},
		{name: "secondary alias", input: "/t high", expected: "/think high"},
		{name: "secondary alias alone", input: "/thinking", expected: "/think"},
		{name: "alias with args", input: "/new fresh start", expected: "/reset fresh start"},
		{name: "first line only", input: "/status\nignored second line", expected: "/status"},
		{name: "dock alias", input: "/dock_telegram", expected: "/dock-telegram"},
		{name: "args rejected keep body", input: "/help me", expected: "/help me"},
		{name: "unknown command untouched", input: "/unknown thing", expected: "/unknown thing"},
		{name: "mention to this bot is stripped", input: "/status@mybot", bot: "MyBot", expected: "/status"},
		{name: "mention with args", input: "/think@mybot high", bot: "mybot", expected: "/think high"},
		{name: "mention to other bot is kept", input: "/status@otherbot", bot: "mybot", expected: "/status@otherbot"},
		{name: "mention kept without bot username", input: "/status@mybot", expected: "/status@mybot"},
		{name: "colon and mention", input: "/status@mybot: please", bot: "mybot", expected: "/status please"},
		{name: "non-breaking space before args", input: "/t\u00a0high", expected: "/think high"},
		{name: "ideographic space before colon", input: "/status\u3000: please", expected: "/status please"},
		{name: "bare slash", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NormalizeOptions{BotUsername: tt.bot}
			got := r.Normalize(tt.input, opts)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, r.Normalize(got, opts), "normalize must be idempotent")
		})
	}
}

func TestIsCommandMessage(t *testing.T) {
	r := Default()
	assert.True(t, r.IsCommandMessage("  /status"))
	assert.True(t, r.IsCommandMessage("/anything"))
	assert.False(t, r.IsCommandMessage("status"))
	assert.False(t, r.IsCommandMessage(""))
}
