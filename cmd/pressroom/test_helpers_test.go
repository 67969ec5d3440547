package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSeeds = `seeds:
  - phrase: best mesh wifi system
    category: networking
  - phrase: wifi extender vs mesh
    category: networking
  - phrase: best espresso grinder
    category: kitchen
  - phrase: noise cancelling headphones review
    category: audio
  - phrase: smart thermostat setup
    category: smart-home
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	stateDir   string
	imageDir   string
	draftsDir  string
	lineupFile string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PRESSROOM_STATE_DIR", "")
	t.Setenv("PRESSROOM_IMAGE_DIR", "")
	t.Setenv("PRESSROOM_SIGNAL_SOURCE", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(homeDir, ".config", "pressroom", "config.toml"),
		stateDir:   filepath.Join(base, "state"),
		imageDir:   filepath.Join(base, "images"),
		draftsDir:  filepath.Join(base, "drafts"),
		lineupFile: filepath.Join(base, "lineup.json"),
	}
	for _, dir := range []string{filepath.Dir(env.configPath), env.imageDir, env.draftsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	seedsPath := filepath.Join(base, "seeds.yaml")
	if err := os.WriteFile(seedsPath, []byte(testSeeds), 0o644); err != nil {
		t.Fatalf("write seeds: %v", err)
	}
	writeTestConfig(t, env, seedsPath)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, env *cliTestEnv, seedsPath string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlineup_file = %q\nlog_dir = %q\nimage_dir = %q\ndrafts_dir = %q\nseeds_file = %q\n",
		env.stateDir,
		env.lineupFile,
		filepath.Join(env.baseDir, "logs"),
		env.imageDir,
		env.draftsDir,
		seedsPath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
