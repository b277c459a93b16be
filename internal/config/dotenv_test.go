package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDotenvPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"default", nil, nil, DefaultEnvFile},
		{"env var", nil, map[string]string{"ENV_FILE": "prod.env"}, "prod.env"},
		{"empty env var", nil, map[string]string{"ENV_FILE": ""}, DefaultEnvFile},
		{"flag with equals", []string{"-p", "9000", "--env-file=a.env"}, nil, "a.env"},
		{"flag with value", []string{"--env-file", "b.env"}, map[string]string{"ENV_FILE": "prod.env"}, "b.env"},
		{"flag without value", []string{"--env-file"}, nil, DefaultEnvFile},
		{"after terminator", []string{"--", "--env-file=c.env"}, nil, DefaultEnvFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}
			if got := DotenvPath(tt.args, lookup); got != tt.want {
				t.Errorf("DotenvPath(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	const (
		fromFile = "RELAY_PROXY_TEST_FROM_FILE"
		preset   = "RELAY_PROXY_TEST_PRESET"
	)
	path := filepath.Join(t.TempDir(), "test.env")
	content := fromFile + "=file\n" + preset + "=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(preset, "process")
	t.Setenv(fromFile, "")
	os.Unsetenv(fromFile)

	if err := LoadDotenv([]string{"--env-file", path}); err != nil {
		t.Fatalf("LoadDotenv() error = %v", err)
	}

	if got := os.Getenv(fromFile); got != "file" {
		t.Errorf("%s = %q, want %q", fromFile, got, "file")
	}
	if got := os.Getenv(preset); got != "process" {
		t.Errorf("%s = %q, want the process value to win", preset, got)
	}
}

func TestLoadDotenv_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.env")
	if err := LoadDotenv([]string{"--env-file=" + missing}); err != nil {
		t.Errorf("LoadDotenv() error = %v, want nil for a missing file", err)
	}
}
