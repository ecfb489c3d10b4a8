package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestMaybeLauncher_NoCredentials(t *testing.T) {
	testEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GITHUB_PERSONAL_ACCESS_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	assert.Nil(t, maybeLauncher(nil))
}

func TestMaybeLauncher_MissingGitHubToken(t *testing.T) {
	testEnv(t)
	viper.Set("anthropic.api_key", "sk-test")
	t.Setenv("GITHUB_PERSONAL_ACCESS_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	assert.Nil(t, maybeLauncher(nil))
}

func TestMaybeLauncher_FullyConfigured(t *testing.T) {
	testEnv(t)
	viper.Set("anthropic.api_key", "sk-test")
	viper.Set("github.token", "ghp-test")

	assert.NotNil(t, maybeLauncher(nil))
}
