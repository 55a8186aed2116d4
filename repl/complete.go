// Copyright © 2018 The ELPS authors

package repl

import (
	"context"

	"github.com/luthersystems/sembind/analysis"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the
// names visible in the session's current scope.
type symbolCompleter struct {
	session *Session
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	s := c.session
	comp := analysis.NewCompleter(s.ws.Table, s.binder).
		Complete(context.Background(), s.scope.Env, string(line[:pos]))
	if comp == nil {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(comp.Candidates))
	for _, cand := range comp.Candidates {
		result = append(result, []rune(cand.Name[len(comp.Prefix):]))
	}
	return result, len([]rune(comp.Prefix))
}
