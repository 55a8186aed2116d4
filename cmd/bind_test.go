// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFile(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	stdout, stderr, err := execute(BindCommand(), path)
	assert.Equal(t, ExitDiagnostics, exitCode(err))
	assert.Contains(t, stdout, "grow\n  (Call")
	assert.Contains(t, stdout, "lossy\n")
	assert.Contains(t, stdout, "missing\n")
	assert.Contains(t, stderr, "B1002")
	assert.Contains(t, stderr, "Shrink")
}

func TestBindFileClean(t *testing.T) {
	path := writeDecls(t, "clean.bind.yaml", cleanDecls)
	stdout, stderr, err := execute(BindCommand(), path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "sum\n")
	assert.Contains(t, stdout, ":int")
}

func TestBindDirectory(t *testing.T) {
	path := writeDecls(t, "clean.bind.yaml", cleanDecls)
	stdout, _, err := execute(BindCommand(), filepath.Dir(path)+"/...")
	require.NoError(t, err)
	assert.Contains(t, stdout, "greeting\n")
}

func TestBindJSON(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	stdout, _, err := execute(BindCommand(), "--json", path)
	assert.Equal(t, ExitDiagnostics, exitCode(err))

	var got []jsonBinding
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "grow", got[0].Name)
	assert.Equal(t, path, got[0].File)
	assert.Equal(t, "int", got[0].Type)
	assert.Empty(t, got[0].Diagnostics)
	assert.Equal(t, "missing", got[2].Name)
	require.Len(t, got[2].Diagnostics, 1)
	assert.Equal(t, "B1002", got[2].Diagnostics[0].Code)
	assert.Equal(t, 21, got[2].Diagnostics[0].Line)
}

func TestBindExpr(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	tests := []struct {
		name     string
		args     []string
		code     int
		stdout   string
		stderr   string
		typ      string
		constant string
	}{
		{name: "constant", args: []string{"-e", "1 + 2"}, typ: "int", constant: "3"},
		{name: "target", args: []string{"-e", "1", "-t", "long"}, typ: "long", constant: "1"},
		{name: "scope", args: []string{"-e", "w.Scale(2)", "-s", "main", path}, typ: "int"},
		{name: "unknown name", args: []string{"-e", "nope"}, code: ExitDiagnostics, stderr: "B1001"},
		{name: "syntax error", args: []string{"-e", "(1 +"}, code: ExitDiagnostics, stderr: "B7001"},
		{name: "unknown scope", args: []string{"-e", "1", "-s", "main"}, code: ExitUsage},
		{name: "bad target", args: []string{"-e", "1", "-t", "<"}, code: ExitUsage},
		{name: "two files", args: []string{"-e", "1", path, path}, code: ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(BindCommand(), tt.args...)
			assert.Equal(t, tt.code, exitCode(err))
			if tt.stderr != "" {
				assert.Contains(t, stderr, tt.stderr)
			}
			if tt.code != ExitOK {
				return
			}
			stdout, _, err := execute(BindCommand(), append([]string{"--json"}, tt.args...)...)
			require.NoError(t, err)
			var got []jsonBinding
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			require.Len(t, got, 1)
			assert.Equal(t, "-e", got[0].Name)
			assert.Equal(t, tt.typ, got[0].Type)
			assert.Equal(t, tt.constant, got[0].Constant)
		})
	}
}

func TestBindSyntax(t *testing.T) {
	stdout, _, err := execute(BindCommand(), "--syntax", "-e", "a.b(1)")
	assert.Equal(t, ExitDiagnostics, exitCode(err))
	assert.Contains(t, stdout, "-e\n  (")
	assert.NotContains(t, stdout, ":int")
}

func TestBindUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no files", nil},
		{"missing file", []string{filepath.Join(t.TempDir(), "absent.bind.yaml")}},
		{"scope without expr", []string{"-s", "main", "app.bind.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(BindCommand(), tt.args...)
			assert.Equal(t, ExitUsage, exitCode(err))
		})
	}
}

func TestBindInvalidYAML(t *testing.T) {
	path := writeDecls(t, "bad.bind.yaml", "expressions: [\n")
	_, stderr, err := execute(BindCommand(), path)
	assert.Equal(t, ExitDiagnostics, exitCode(err))
	assert.Contains(t, stderr, "bad.bind.yaml")
}
