// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/workspace"
)

// emptyDecls declares nothing; expressions bound in it see the core
// library only.
const emptyDecls = "{}"

// loadWorkspace loads the declaration file at path, or an empty workspace
// when path is empty. Invalid declarations are returned as diagnostics and
// do not fail the load; unreadable files and invalid YAML do.
func loadWorkspace(path string, cfg *cmdConfig) (*workspace.Workspace, []diagnostic.Diagnostic, error) {
	if path == "" {
		ws, err := workspace.Parse("<none>", []byte(emptyDecls), cfg.workspaceOptions()...)
		return ws, nil, err
	}
	ws, err := workspace.Load(path, cfg.workspaceOptions()...)
	if ws == nil {
		return nil, nil, fileError(err)
	}
	return ws, analysis.DeclarationDiagnostics(err), nil
}

// fileError classifies a failure to load a file: files that cannot be
// read are usage errors, files that are not YAML documents are reported
// like diagnostics.
func fileError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return usageError("%w", err)
	}
	return &exitError{code: ExitDiagnostics, err: err}
}

// sourceReader reads files for the renderer, serving in-memory sources by
// their display name.
func sourceReader(mem map[string]string) func(string) ([]byte, error) {
	return func(file string) ([]byte, error) {
		if text, ok := mem[file]; ok {
			return []byte(text), nil
		}
		return os.ReadFile(file) //nolint:gosec // CLI tool reads user-specified files
	}
}

func rendererFor(mem map[string]string) *diagnostic.Renderer {
	r := newRenderer()
	r.SourceReader = sourceReader(mem)
	return r
}
