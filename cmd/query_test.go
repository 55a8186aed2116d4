// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in        string
		line, col int
		wantErr   bool
	}{
		{in: "19:40", line: 19, col: 40},
		{in: "1:1", line: 1, col: 1},
		{in: "19", wantErr: true},
		{in: "0:4", wantErr: true},
		{in: "3:x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			line, col, err := parsePosition(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestQuery(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	tests := []struct {
		name string
		pos  string
		want answer
	}{
		{"method", "19:41", answer{
			Kind:      "method",
			Name:      "Widget.Scale(int)",
			Signature: "int Widget.Scale(int by)",
			Type:      "int",
			Doc:       "Grows the widget.",
		}},
		{"local", "19:38", answer{Kind: "local", Name: "w", Type: "Widget"}},
		{"literal", "19:46", answer{Kind: "expression", Name: "Literal", Type: "int", Constant: "2"}},
		{"unresolved", "21:44", answer{Kind: "unresolved", Name: "Shrink"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(QueryCommand(), "--json", path, tt.pos)
			require.NoError(t, err)
			var got answer
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Name, got.Name)
			if tt.want.Signature != "" {
				assert.Equal(t, tt.want.Signature, got.Signature)
			}
			assert.Equal(t, tt.want.Type, got.Type)
			assert.Equal(t, tt.want.Constant, got.Constant)
			assert.Equal(t, tt.want.Doc, got.Doc)
			assert.NotEmpty(t, got.At)
		})
	}
}

func TestQueryText(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	stdout, _, err := execute(QueryCommand(), path, "19:41")
	require.NoError(t, err)
	assert.Contains(t, stdout, "method Widget.Scale(int)\n")
	assert.Contains(t, stdout, "  defined at: "+path+":9:")
	assert.Contains(t, stdout, "  Grows the widget.\n")
}

func TestQueryNothing(t *testing.T) {
	path := writeDecls(t, "app.bind.yaml", testDecls)
	_, stderr, err := execute(QueryCommand(), path, "2:1")
	assert.Equal(t, ExitDiagnostics, exitCode(err))
	assert.Contains(t, stderr, "no expression at position")

	_, _, err = execute(QueryCommand(), path, "two")
	assert.Equal(t, ExitUsage, exitCode(err))

	_, _, err = execute(QueryCommand(), path)
	assert.Error(t, err)
}
