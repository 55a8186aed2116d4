// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/symbols"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It finds the call whose argument list contains the cursor and lists the
// overloads of the member it calls, with the one the call bound to and
// the parameter of the argument at the cursor active.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)
	_, _, res, _ := doc.snapshot()
	if res == nil {
		return nil, nil
	}

	site := res.CallAt(int(params.Position.Line)+1, int(params.Position.Character)+1)
	if site == nil || len(site.Candidates) == 0 {
		return nil, nil
	}
	return buildSignatureHelp(res.Workspace.Table, site), nil
}

func buildSignatureHelp(tab *symbols.Table, site *analysis.CallSite) *protocol.SignatureHelp {
	help := &protocol.SignatureHelp{}
	for _, c := range site.Candidates {
		sig := protocol.SignatureInformation{
			Label: tab.Signature(c),
		}
		if c.Doc != "" {
			sig.Documentation = c.Doc
		}
		for i := range c.Params {
			sig.Parameters = append(sig.Parameters, protocol.ParameterInformation{
				Label: symbols.ParamString(c, i),
			})
		}
		help.Signatures = append(help.Signatures, sig)
	}

	active := max(site.Active, 0)
	activeSig := safeUint(active)
	help.ActiveSignature = &activeSig

	param := site.Parameter
	if param < 0 {
		param = site.Argument
	}
	if n := len(site.Candidates[active].Params); param >= n && n > 0 && site.Candidates[active].HasParamsArray() {
		param = n - 1
	}
	if param >= 0 {
		activeParam := safeUint(param)
		help.ActiveParameter = &activeParam
	}
	return help
}
