// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/sembind/symbols"
)

// docWidth is the column documentation text is wrapped at.
const docWidth = 76

type docFlags struct {
	file  string
	list  bool
	short bool
}

// DocCommand creates the "doc" cobra command.
func DocCommand(opts ...Option) *cobra.Command {
	var flags docFlags
	cmd := &cobra.Command{
		Use:   "doc [flags] QUERY",
		Short: "Show documentation for declared namespaces, types and members",
		Long: `Show the declarations and documentation of namespaces, types and
members.

QUERY names a namespace (System), a type (Widget, App.Widget) or a member
of a type (Widget.Scale). A namespace lists its types, a type shows its
signature, documentation and members, and a member shows every overload.
Without -f only the core library is available; with -f the declarations of
FILE are loaded as well.

Examples:
  sembind doc System                     List the core library types
  sembind doc string.Concat              Show the overloads of string.Concat
  sembind doc -f app.bind.yaml Widget    Show a declared type
  sembind doc -l -f app.bind.yaml        List every declared namespace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(opts)
			if !flags.list && len(args) != 1 {
				return usageError("doc requires exactly one QUERY")
			}
			ws, declDiags, err := loadWorkspace(flags.file, cfg)
			if err != nil {
				return err
			}
			if len(declDiags) > 0 {
				renderDiagnostics(cmd.ErrOrStderr(), declDiags)
			}
			d := &documenter{tab: ws.Table, w: cmd.OutOrStdout(), short: flags.short}
			if flags.list {
				d.namespaces()
				return nil
			}
			if !d.query(args[0]) {
				fmt.Fprintf(cmd.ErrOrStderr(), "no namespace, type or member named %s\n", args[0])
				return errDiagnostics
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Load the declarations of `FILE`")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "List the declared namespaces")
	cmd.Flags().BoolVarP(&flags.short, "short", "s", false, "Omit documentation text")
	return cmd
}

type documenter struct {
	tab   *symbols.Table
	w     io.Writer
	short bool
}

// query prints the documentation of whatever q names and reports whether
// anything matched.
func (d *documenter) query(q string) bool {
	if ns := d.tab.LookupNamespace(q); ns != nil && q != "" {
		d.namespace(ns)
		return true
	}
	if types := d.findTypes(q); len(types) > 0 {
		for i, nt := range types {
			if i > 0 {
				fmt.Fprintln(d.w)
			}
			d.typ(nt)
		}
		return true
	}
	dot := strings.LastIndexByte(q, '.')
	if dot < 0 {
		return false
	}
	var found bool
	for _, nt := range d.findTypes(q[:dot]) {
		for _, m := range nt.DeclaredMembersNamed(q[dot+1:]) {
			if found {
				fmt.Fprintln(d.w)
			}
			d.member(m)
			found = true
		}
	}
	return found
}

// findTypes returns the type declarations whose simple, generic or
// qualified name is q.
func (d *documenter) findTypes(q string) []*symbols.NamedType {
	var out []*symbols.NamedType
	for _, sym := range d.tab.Symbols() {
		if sym.Kind != symbols.SymType {
			continue
		}
		nt, ok := sym.Declared.(*symbols.NamedType)
		if !ok || nt.Definition != nil {
			continue
		}
		if nt.Name == q || nt.String() == q || nt.QualifiedName() == q {
			out = append(out, nt)
		}
	}
	return out
}

func (d *documenter) namespaces() {
	var names []string
	var walk func(ns *symbols.Symbol)
	walk = func(ns *symbols.Symbol) {
		for _, m := range ns.NamespaceMembers() {
			if m.Kind == symbols.SymNamespace {
				names = append(names, d.tab.NamespaceName(m))
				walk(m)
			}
		}
	}
	walk(d.tab.Global())
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(d.w, name)
	}
}

func (d *documenter) namespace(ns *symbols.Symbol) {
	fmt.Fprintf(d.w, "namespace %s\n", d.tab.NamespaceName(ns))
	var sb strings.Builder
	for _, m := range ns.NamespaceMembers() {
		switch m.Kind {
		case symbols.SymNamespace:
			fmt.Fprintf(&sb, "namespace %s\n", m.Name)
		case symbols.SymType:
			fmt.Fprintln(&sb, d.tab.Signature(m))
		}
	}
	fmt.Fprint(d.w, indent.String(sb.String(), 2))
}

func (d *documenter) typ(nt *symbols.NamedType) {
	sym := d.tab.TypeSymbol(nt)
	fmt.Fprintln(d.w, d.tab.Signature(sym))
	d.doc(sym)
	members := nt.DeclaredMembers()
	if len(members) == 0 {
		return
	}
	fmt.Fprintln(d.w)
	var sb strings.Builder
	for _, m := range members {
		fmt.Fprintln(&sb, d.tab.Signature(m))
	}
	fmt.Fprint(d.w, indent.String(sb.String(), 2))
}

func (d *documenter) member(m *symbols.Symbol) {
	fmt.Fprintln(d.w, d.tab.Signature(m))
	d.doc(m)
}

func (d *documenter) doc(sym *symbols.Symbol) {
	if sym.Obsolete != nil {
		msg := "Obsolete."
		if sym.Obsolete.Message != "" {
			msg = "Obsolete: " + sym.Obsolete.Message
		}
		fmt.Fprintln(d.w, indent.String(msg, 4))
	}
	if d.short || sym.Doc == "" {
		return
	}
	fmt.Fprintln(d.w, indent.String(wordwrap.String(sym.Doc, docWidth-4), 4))
}
