package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaoru0429/Prompt-Master/internal/config"
	"github.com/kaoru0429/Prompt-Master/internal/processor"
)

func TestInitLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		logger, err := initLogger(level)
		require.NoError(t, err, level)
		require.NotNil(t, logger)
	}
}

func TestInitProcessor(t *testing.T) {
	cfg := &config.Config{CELEnabled: true, CardLayout: "{{{title}}} - {{{prompt}}}"}

	proc, err := initProcessor(cfg, zap.NewNop())
	require.NoError(t, err)

	result, err := proc.Process(context.Background(), &processor.Request{
		Title:    "T",
		Template: "{{N#3}}",
		Card:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "T - 3", result.Card)
	require.Len(t, result.Fields, 1)
	assert.True(t, result.Fields[0].Valid)
}

func TestInitProcessorWithoutFields(t *testing.T) {
	proc, err := initProcessor(&config.Config{}, zap.NewNop())
	require.NoError(t, err)

	result, err := proc.Process(context.Background(), &processor.Request{Template: "{{A}}"})
	require.NoError(t, err)
	assert.Empty(t, result.Fields)
}

func TestInitProcessorRejectsBadLayout(t *testing.T) {
	_, err := initProcessor(&config.Config{CardLayout: "{{#each}}"}, zap.NewNop())
	require.Error(t, err)
}
