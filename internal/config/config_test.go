// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdirTemp runs the rest of the test from an empty directory so no
// stray config file is picked up
func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// clearConfigEnv removes ambient variables that would leak into tests
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "OPENAI_API_KEY", "OPENAI_ENDPOINT",
		"CATALOG_DB_PATH", "LAZYUNCLE_DB_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
provider:
  api_key: "sk-test-key"  # pragma: allowlist secret
  model: "gpt-4o"
retry:
  max_retries: 1
  base_delay_ms: 500
  max_delay_ms: 2000
breaker:
  max_failures: 5
  reset_timeout_seconds: 30
logging:
  level: "debug"
  format: "json"
  output: "stdout"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Server.Port != 9090 {
		t.Errorf("Expected server port 9090, got %d", config.Server.Port)
	}
	if config.Provider.APIKey != "sk-test-key" {
		t.Errorf("Expected provider API key 'sk-test-key', got '%s'", config.Provider.APIKey)
	}
	if config.Provider.Model != "gpt-4o" {
		t.Errorf("Expected provider model 'gpt-4o', got '%s'", config.Provider.Model)
	}
	if config.Retry.MaxRetries != 1 {
		t.Errorf("Expected retry max_retries 1, got %d", config.Retry.MaxRetries)
	}
	if config.Breaker.MaxFailures != 5 {
		t.Errorf("Expected breaker max_failures 5, got %d", config.Breaker.MaxFailures)
	}

	// Unset values keep their defaults
	if config.Provider.MaxTokens != 1200 {
		t.Errorf("Expected default max_tokens 1200, got %d", config.Provider.MaxTokens)
	}
	if config.Provider.TimeoutSeconds != 12 {
		t.Errorf("Expected default timeout_seconds 12, got %d", config.Provider.TimeoutSeconds)
	}
}

func TestLoadFromEnvironmentOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env-only-key")
	chdirTemp(t)

	config, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config without a file: %v", err)
	}

	if config.Provider.APIKey != "sk-env-only-key" {
		t.Errorf("Expected API key from environment, got '%s'", config.Provider.APIKey)
	}
	if config.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.Server.Port)
	}
	if config.Retry.MaxRetries != 2 {
		t.Errorf("Expected default max_retries 2, got %d", config.Retry.MaxRetries)
	}
	if config.Retry.BaseDelayMs != 1000 || config.Retry.MaxDelayMs != 5000 {
		t.Errorf("Expected default delays 1000/5000, got %d/%d",
			config.Retry.BaseDelayMs, config.Retry.MaxDelayMs)
	}
	if config.Breaker.MaxFailures != 3 || config.Breaker.ResetTimeoutSeconds != 60 {
		t.Errorf("Expected default breaker 3/60, got %d/%d",
			config.Breaker.MaxFailures, config.Breaker.ResetTimeoutSeconds)
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
provider:
  api_key: "sk-file-key"
logging:
  level: "info"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Provider.APIKey != "sk-env-key" {
		t.Errorf("Expected environment to override file API key, got '%s'", config.Provider.APIKey)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected environment to override log level, got '%s'", config.Logging.Level)
	}
}

func TestMissingAPIKeyFails(t *testing.T) {
	clearConfigEnv(t)
	chdirTemp(t)

	_, err := Load("")
	if err == nil {
		t.Fatal("Expected validation error when API key is missing")
	}
	if !strings.Contains(err.Error(), "provider.api_key") {
		t.Errorf("Expected error to name provider.api_key, got: %v", err)
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing-file error, got: %v", err)
	}
}

func TestValidationRejectsBadValues(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 99999
provider:
  api_key: "sk-test"
  temperature: 5
logging:
  level: "loud"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	for _, field := range []string{"server.port", "provider.temperature", "logging.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Expected error to name %s, got: %v", field, err)
		}
	}
}

func TestMaskSensitiveValues(t *testing.T) {
	config := &Config{
		Provider: ProviderConfig{APIKey: "sk-abcdef1234567890"},
	}

	masked := config.MaskSensitiveValues()

	if masked.Provider.APIKey != "sk-abcde*********" {
		t.Errorf("Expected masked API key, got '%s'", masked.Provider.APIKey)
	}
	if config.Provider.APIKey != "sk-abcdef1234567890" {
		t.Error("Expected original config to be untouched")
	}
}

func TestMaskValue(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"1234567890", "12345678**"},
	}

	for _, tc := range cases {
		if got := maskValue(tc.input); got != tc.expected {
			t.Errorf("maskValue(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}
