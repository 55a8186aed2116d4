// Copyright © 2024 The ELPS authors

package repl

import (
	"github.com/luthersystems/sembind/diagnostic"
)

// render writes diagnostics with the session's renderer. Lookup failures
// get a note pointing at the commands that change what is in scope.
func (s *Session) render(diags ...diagnostic.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	for i, d := range diags {
		diags[i] = s.withHints(d)
	}
	_ = s.renderer.RenderAll(s.out, diags)
}

func (s *Session) withHints(d diagnostic.Diagnostic) diagnostic.Diagnostic {
	if d.Code != diagnostic.ErrNameNotFound {
		return d
	}
	if s.Scope() == "" && len(s.ws.Scopes) > 0 {
		return d.WithNotes("locals are only visible in their scope; use :scopes to list them")
	}
	return d.WithNotes("press Tab to complete the names in scope")
}
