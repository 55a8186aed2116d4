// Copyright © 2024 The ELPS authors

package bindtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/bound"
	"github.com/luthersystems/sembind/diagnostic"
)

func TestRunDir(t *testing.T) {
	RunDir(t, "testdata")
}

func TestFixture(t *testing.T) {
	f := LoadFile(t, filepath.Join("testdata", "basic.bind.yaml"))

	tree, diags := f.Bind("unchecked")
	require.NotNil(t, tree)
	assert.Empty(t, diags)
	assert.Equal(t, bound.KindPropertyAccess, tree.Kind())
	assert.Contains(t, f.Render(tree), "Size")

	tree, diags = f.BindText("main", "w.Scale(true)")
	require.NotNil(t, tree)
	assert.True(t, tree.HasErrors())
	assert.Equal(t, []string{"B2002"}, Codes(diags))

	tree, diags = f.BindText("", "2 * 3")
	assert.Empty(t, diags)
	assert.Equal(t, "6", tree.ConstantValue().ExactString())
}

func TestLoad(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "basic.bind.yaml"))
	require.NoError(t, err)
	f := Load(t, string(data))
	assert.Equal(t, "test.bind.yaml", f.Workspace.File)
	assert.Len(t, f.Result.Bindings, len(f.Workspace.Expressions))
}

func TestCodes(t *testing.T) {
	assert.Empty(t, Codes(nil))
	diags := []diagnostic.Diagnostic{
		diagnostic.New(diagnostic.ErrNameNotFound, diagnostic.Span{}, "x"),
		diagnostic.New(diagnostic.ErrSyntax, diagnostic.Span{}, "unexpected end of input"),
	}
	assert.Equal(t, []string{"B1001", "B7001"}, Codes(diags))
}

type recorder struct {
	lines []string
	testing.TB
}

func (r *recorder) Log(args ...any) {
	for _, a := range args {
		r.lines = append(r.lines, a.(string))
	}
}

func TestLogger(t *testing.T) {
	rec := &recorder{TB: t}
	log := NewLogger(rec)
	var buf bytes.Buffer
	buf.WriteString("one\ntw")
	n, err := log.Write(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)
	assert.Equal(t, []string{"one"}, rec.lines)

	_, err = log.Write([]byte("o\nthree"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, rec.lines)

	log.Flush()
	assert.Equal(t, []string{"one", "two", "three"}, rec.lines)
	log.Flush()
	assert.Len(t, rec.lines, 3)
}
