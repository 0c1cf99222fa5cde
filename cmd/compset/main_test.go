package main

import (
	"context"
	"testing"

	"github.com/helixml/compset"
	"github.com/helixml/compset/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "mcp", "jobs", "version"})
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := config.NewAppConfig()

	unchanged := applyServeOverrides(cfg, "", 0)
	assert.Equal(t, cfg.Addr(), unchanged.Addr())

	changed := applyServeOverrides(cfg, "127.0.0.1", 9090)
	assert.Equal(t, "127.0.0.1:9090", changed.Addr())
}

func TestRunJob_RejectsUnknownJob(t *testing.T) {
	err := runJob(context.Background(), "", "reindex", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, compset.ErrUnknownJob)
}

func TestRunJob_RejectsBadDate(t *testing.T) {
	err := runJob(context.Background(), "", "index", "01/03/2026")
	assert.Error(t, err)
}
