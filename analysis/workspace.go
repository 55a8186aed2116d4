// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"

	"github.com/luthersystems/sembind/diagnostic"
	"github.com/luthersystems/sembind/workspace"
)

// File is the analysis of one declaration file.
type File struct {
	Path string
	// Result is nil when the file could not be read or is not a valid
	// YAML document.
	Result *Result
	// Err holds the read or declaration errors of the file.
	Err error
}

// Diagnostics returns the declaration and binding diagnostics of the file
// ordered by position.
func (f *File) Diagnostics() []diagnostic.Diagnostic {
	diags := DeclarationDiagnostics(f.Err)
	if f.Result != nil {
		diags = append(diags, f.Result.Diagnostics()...)
	}
	diagnostic.SortByPosition(diags)
	return diags
}

// AnalyzeFile loads and analyzes the declaration file at path. Declaration
// errors do not stop analysis of the declarations that are valid.
func AnalyzeFile(ctx context.Context, path string, cfg *Config, opts ...workspace.Option) *File {
	f := &File{Path: path}
	ws, err := workspace.Load(path, opts...)
	f.Err = err
	if ws != nil {
		f.Result = AnalyzeContext(ctx, ws, cfg)
	}
	return f
}

// AnalyzeDir walks a directory tree and analyzes every declaration file in
// it. Hidden directories are skipped. Files that fail to load are returned
// with their error rather than aborting the walk.
func AnalyzeDir(ctx context.Context, root string, cfg *Config, opts ...workspace.Option) ([]*File, error) {
	paths, err := workspace.Scan(root)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		files = append(files, AnalyzeFile(ctx, path, cfg, opts...))
	}
	return files, nil
}
