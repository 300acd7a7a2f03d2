package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseArgs(dbPath string) []string {
	return []string{
		"-user", "testuser",
		"-email", "testuser@example.com",
		"-answer", "Rex",
		"-password", "secret123",
		"-db", dbPath,
	}
}

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_success.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run(baseArgs(dbPath), stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "User testuser created successfully")
}

func TestRun_DuplicateEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run(baseArgs(dbPath), stdin, stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	stdout.Reset()
	stderr.Reset()
	err = run(baseArgs(dbPath), stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate email")
	assert.Contains(t, err.Error(), "already registered")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	err := run([]string{"-password", "secret123"}, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InvalidEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_bademail.db")
	args := []string{"-user", "testuser", "-email", "not-an-email", "-answer", "Rex", "-password", "secret123", "-db", dbPath}

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email")
}

func TestRun_ShortPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_shortpw.db")
	args := []string{"-user", "testuser", "-email", "testuser@example.com", "-answer", "Rex", "-password", "short", "-db", dbPath}

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_interactive.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	stdin := bytes.NewBufferString("interactive_secret\n")
	args := []string{"-user", "testuser", "-email", "testuser@example.com", "-answer", "Rex", "-db", dbPath}

	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "created successfully")
}
