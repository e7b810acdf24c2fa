package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/confwatch/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, &app.Config{
		ConfigPath:  "confwatch.hcl",
		Command:     app.CommandRender,
		LogFormat:   "text",
		LogLevel:    "info",
		SettleDelay: 100 * time.Millisecond,
	}, cfg)
}

func TestParse_WatchWithOptions(t *testing.T) {
	args := []string{
		"-c", "dotfiles/", "-only", "tmux, zsh,", "-env-file", ".env",
		"-log-format", "JSON", "-log-level", "debug", "-keep-going",
		"-healthcheck-port", "8089", "-settle", "250ms", "watch",
	}
	cfg, exit, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "dotfiles/", cfg.ConfigPath)
	assert.Equal(t, app.CommandWatch, cfg.Command)
	assert.Equal(t, []string{"tmux", "zsh"}, cfg.Only)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.KeepGoing)
	assert.Equal(t, 8089, cfg.HealthcheckPort)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"help"}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
		{"bad log format", []string{"-log-format", "xml"}, "invalid log-format"},
		{"bad log level", []string{"-log-level", "trace"}, "invalid log-level"},
		{"unknown command", []string{"serve"}, `unknown command "serve"`},
		{"too many args", []string{"render", "watch"}, "too many arguments"},
		{"bad port", []string{"-healthcheck-port", "-1"}, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
