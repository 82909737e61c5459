package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testJob = "We need Python, JavaScript, React, Docker and Kubernetes experience"

// execute runs the CLI in-process and returns everything written to stdout
// and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// isolateEnv clears variables that would override test config files.
// Empty values are ignored by viper.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RESUME_ANALYZER_DATABASE_URL", "")
	t.Setenv("RESUME_ANALYZER_DATABASE_DRIVER", "")
	t.Setenv("RESUME_ANALYZER_TAXONOMY_PATH", "")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// sqliteConfig writes a config file that enables a SQLite history store in dir.
func sqliteConfig(t *testing.T, dir string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "history.db")
	return writeFile(t, dir, "config.yaml", "database:\n  driver: sqlite\n  url: "+dbPath+"\n")
}
