// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/sembind/binder"
)

func candidateNames(c *Completion) []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		names[i] = cand.Name
	}
	return names
}

func TestCompleteAt(t *testing.T) {
	r := parseAndAnalyze(t, fixture, nil)
	c := NewCompleter(r.Workspace.Table, binder.New(r.Workspace.Table))

	tests := []struct {
		expr   string
		before string
		prefix string
		want   []string
	}{
		{"scale", "w.Sc", "Sc", []string{"Scale"}},
		{"scale", "w.Scale(w.", "", []string{"Scale", "Size"}},
		{"create", "new Wi", "Wi", []string{"Widget"}},
		{"mismatch", "Pa", "Pa", []string{"Pair"}},
		{"missing", "w.Shrink(1)", "", nil},
		{"broken", "w.Scale(", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.before, func(t *testing.T) {
			line, col := position(t, tt.expr, tt.before)
			comp := r.CompleteAt(context.Background(), c, line, col+len(tt.before))
			assert.Equal(t, tt.want, candidateNames(comp))
			if comp != nil {
				assert.Equal(t, tt.prefix, comp.Prefix)
			}
		})
	}
}

func TestCompleteAt_Outside(t *testing.T) {
	r := parseAndAnalyze(t, fixture, nil)
	c := NewCompleter(r.Workspace.Table, binder.New(r.Workspace.Table))
	assert.Nil(t, r.CompleteAt(context.Background(), c, 1, 1))
}

func TestComplete_Qualified(t *testing.T) {
	r := parseAndAnalyze(t, fixture, nil)
	c := NewCompleter(r.Workspace.Table, binder.New(r.Workspace.Table))
	env := r.Binding("scale").Expression.Env

	tests := []struct {
		before string
		want   []string
	}{
		{"App.Wi", []string{"Widget"}},
		{"Program.P", []string{"Pair"}},
		{"1 + Program.M", []string{"Main"}},
		{"w.M", nil},
		{"Nope.X", nil},
	}
	for _, tt := range tests {
		t.Run(tt.before, func(t *testing.T) {
			assert.Equal(t, tt.want, candidateNames(c.Complete(context.Background(), env, tt.before)))
		})
	}
}

func TestTrailingName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"w.Scale(wid", "wid"},
		{"1 + App.Wi", "App.Wi"},
		{"1 + ", ""},
		{"größe", "größe"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, trailingName(tt.in))
		})
	}
}
