// Package integration runs the craftcompass binary end to end against
// isolated config and data directories.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// craftBin is the path to the built craftcompass binary.
	craftBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the directory
// holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is one isolated installation: its own config and data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates config and data directories under a temp dir. Extra
// config lines are appended to the generated config.yaml.
func NewTestEnv(t *testing.T, extraConfig ...string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build craftcompass: %v", buildErr)
	}
	if craftBin == "" {
		t.Fatal("craftcompass binary not built")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "data_dir: " + dataDir + "\n"
	for _, line := range extraConfig {
		content += line + "\n"
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{t: t, TempDir: tempDir, Config: configDir, DataDir: dataDir}
}

// CmdResult holds the result of one craftcompass invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes craftcompass with the environment's directories.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(craftBin, allArgs...)
	cmd.Dir = e.TempDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run craftcompass: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes craftcompass and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	res := e.Run(args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("craftcompass %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// MustRunJSON runs a command with --json and decodes its output.
func MustRunJSON[T any](e *TestEnv, args ...string) T {
	e.t.Helper()
	res := e.MustRun(append([]string{"--json"}, args...)...)
	return ParseJSON[T](e.t, res.Stdout)
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return out
}

// Entity is the common shape of created records in --json output.
type Entity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemJSON is an item as printed by item get --json.
type ItemJSON struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	SupplierID *int64  `json:"supplier_id"`
	Tags       []struct {
		Name string `json:"name"`
	} `json:"tags"`
	Metadata []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"metadata"`
}

// ImportReport is the --json shape of an import.
type ImportReport struct {
	BatchID string `json:"batch_id"`
	Policy  string `json:"policy"`
	Results []struct {
		Entity  string `json:"entity"`
		Outcome string `json:"outcome"`
		Error   string `json:"error"`
	} `json:"results"`
}

// Outcomes counts the report results per outcome.
func (r ImportReport) Outcomes() map[string]int {
	out := map[string]int{}
	for _, res := range r.Results {
		out[res.Outcome]++
	}
	return out
}
