package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "project-tracker version 1.0.0\n", buf.String())
}

func TestGetConfigPath(t *testing.T) {
	orig := configFile
	defer func() { configFile = orig }()

	configFile = ""
	t.Setenv("CONFIG_FILE", "")
	assert.Equal(t, "configs/config.yaml", getConfigPath())
	assert.Equal(t, "默认配置", getConfigSource())

	t.Setenv("CONFIG_FILE", "/etc/tracker.yaml")
	assert.Equal(t, "/etc/tracker.yaml", getConfigPath())
	assert.Equal(t, "环境变量", getConfigSource())

	configFile = "local.yaml"
	assert.Equal(t, "local.yaml", getConfigPath())
	assert.Equal(t, "命令行参数", getConfigSource())
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "seed", "reconcile", "version"})
}
