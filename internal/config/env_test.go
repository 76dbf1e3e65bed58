package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSubstituteEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	input := []byte("value: ${TEST_VAR}")
	expected := []byte("value: test_value")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsMultiple(t *testing.T) {
	os.Setenv("VAR1", "value1")
	os.Setenv("VAR2", "value2")
	defer os.Unsetenv("VAR1")
	defer os.Unsetenv("VAR2")

	input := []byte("first: ${VAR1}\nsecond: ${VAR2}")
	expected := []byte("first: value1\nsecond: value2")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNotSet(t *testing.T) {
	os.Unsetenv("NONEXISTENT_VAR")

	input := []byte("value: ${NONEXISTENT_VAR}")
	expected := []byte("value: ${NONEXISTENT_VAR}") // unchanged

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestSubstituteEnvVarsNoVars(t *testing.T) {
	input := []byte("value: plain_text")
	expected := []byte("value: plain_text")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	os.Setenv("TEST_DB_PATH", "/data/runs.db")
	os.Setenv("TEST_AUTH_PASSWORD", "secret")
	defer os.Unsetenv("TEST_DB_PATH")
	defer os.Unsetenv("TEST_AUTH_PASSWORD")

	content := `
storage:
  enabled: true
  path: "${TEST_DB_PATH}"

auth:
  enabled: true
  user: admin
  password: "${TEST_AUTH_PASSWORD}"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.Path != "/data/runs.db" {
		t.Errorf("expected path /data/runs.db, got %s", cfg.Storage.Path)
	}
	if cfg.Auth.Password != "secret" {
		t.Errorf("expected substituted password, got %s", cfg.Auth.Password)
	}
}

func TestSubstituteEnvVarsFallback(t *testing.T) {
	os.Unsetenv("RUNECONOMY_UNSET")
	os.Setenv("RUNECONOMY_SET", "9000")
	defer os.Unsetenv("RUNECONOMY_SET")

	input := []byte("a: ${RUNECONOMY_UNSET:-fallback}\nb: ${RUNECONOMY_SET:-1}\nc: ${RUNECONOMY_UNSET:-}")
	expected := []byte("a: fallback\nb: 9000\nc: ")

	result := substituteEnvVars(input)

	if string(result) != string(expected) {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

