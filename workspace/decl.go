// Copyright © 2024 The ELPS authors

package workspace

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// pos is the position of a YAML node. Column is 1-based like Line.
type pos struct {
	Line   int
	Column int
}

func posOf(n *yaml.Node) pos {
	if n == nil {
		return pos{}
	}
	return pos{Line: n.Line, Column: n.Column}
}

// scalar is a string value that remembers where it was written. Type
// references and expression texts are scalars so that their diagnostics
// point into the declaration file.
type scalar struct {
	Value string
	node  *yaml.Node
}

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", value.Line)
	}
	s.Value = value.Value
	s.node = value
	return nil
}

func (s scalar) pos() pos { return posOf(s.node) }

// document is the root of a declaration file.
type document struct {
	Module      string           `yaml:"module"`
	Usings      []scalar         `yaml:"usings"`
	Namespaces  []*namespaceDecl `yaml:"namespaces"`
	Scopes      []*scopeDecl     `yaml:"scopes"`
	Expressions []*exprDecl      `yaml:"expressions"`
}

type namespaceDecl struct {
	Name   string      `yaml:"name"`
	Usings []scalar    `yaml:"usings"`
	Types  []*typeDecl `yaml:"types"`
	at     pos
}

func (d *namespaceDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain namespaceDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

type obsoleteDecl struct {
	Message string `yaml:"message"`
	Error   bool   `yaml:"error"`
}

type typeDecl struct {
	Name       string           `yaml:"name"`
	Kind       string           `yaml:"kind"`
	Access     string           `yaml:"access"`
	Static     bool             `yaml:"static"`
	Abstract   bool             `yaml:"abstract"`
	TypeParams []*typeParamDecl `yaml:"typeParams"`
	Base       *scalar          `yaml:"base"`
	Interfaces []scalar         `yaml:"interfaces"`
	Underlying *scalar          `yaml:"underlying"`
	WellKnown  string           `yaml:"wellKnown"`
	Obsolete   *obsoleteDecl    `yaml:"obsolete"`
	Doc        string           `yaml:"doc"`
	Values     []*enumValueDecl `yaml:"values"`
	Invoke     *memberDecl      `yaml:"invoke"`
	Members    []*memberDecl    `yaml:"members"`
	at         pos
}

func (d *typeDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain typeDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

// typeParamDecl is written either as a bare name or as a mapping with
// constraints.
type typeParamDecl struct {
	Name        string   `yaml:"name"`
	Constraints []scalar `yaml:"constraints"`
	Class       bool     `yaml:"class"`
	Struct      bool     `yaml:"struct"`
	New         bool     `yaml:"new"`
	at          pos
}

func (d *typeParamDecl) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Name = value.Value
		d.at = posOf(value)
		return nil
	}
	type plain typeParamDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

type enumValueDecl struct {
	Name  string  `yaml:"name"`
	Value *scalar `yaml:"value"`
	at    pos
}

func (d *enumValueDecl) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Name = value.Value
		d.at = posOf(value)
		return nil
	}
	type plain enumValueDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

// memberDecl declares a field, property, indexer, method, constructor or
// operator. Kind selects which; operators name their token in Op.
type memberDecl struct {
	Kind       string           `yaml:"kind"`
	Name       string           `yaml:"name"`
	Op         string           `yaml:"op"`
	Access     string           `yaml:"access"`
	Static     bool             `yaml:"static"`
	Abstract   bool             `yaml:"abstract"`
	Virtual    bool             `yaml:"virtual"`
	Extension  bool             `yaml:"extension"`
	Type       *scalar          `yaml:"type"`
	Returns    *scalar          `yaml:"returns"`
	Const      *scalar          `yaml:"const"`
	TypeParams []*typeParamDecl `yaml:"typeParams"`
	Params     []*paramDecl     `yaml:"params"`
	Obsolete   *obsoleteDecl    `yaml:"obsolete"`
	Doc        string           `yaml:"doc"`
	at         pos
}

func (d *memberDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain memberDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name", "op", "kind")
	return nil
}

type paramDecl struct {
	Name       string  `yaml:"name"`
	Type       *scalar `yaml:"type"`
	Ref        string  `yaml:"ref"`
	Params     bool    `yaml:"params"`
	Default    *scalar `yaml:"default"`
	CallerInfo string  `yaml:"callerInfo"`
	at         pos
}

func (d *paramDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain paramDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

// scopeDecl places a block of locals inside a namespace, type and method.
type scopeDecl struct {
	Name      string       `yaml:"name"`
	Namespace string       `yaml:"namespace"`
	Usings    []scalar     `yaml:"usings"`
	Type      string       `yaml:"type"`
	Method    string       `yaml:"method"`
	Static    *bool        `yaml:"static"`
	Locals    []*localDecl `yaml:"locals"`
	at        pos
}

func (d *scopeDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain scopeDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

type localDecl struct {
	Name  string  `yaml:"name"`
	Type  *scalar `yaml:"type"`
	Const *scalar `yaml:"const"`
	at    pos
}

func (d *localDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain localDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name")
	return nil
}

type exprDecl struct {
	Name     string   `yaml:"name"`
	Scope    string   `yaml:"scope"`
	Text     scalar   `yaml:"text"`
	Target   *scalar  `yaml:"target"`
	Constant string   `yaml:"constant"`
	Features []string `yaml:"features"`
	at       pos
}

func (d *exprDecl) UnmarshalYAML(value *yaml.Node) error {
	type plain exprDecl
	if err := value.Decode((*plain)(d)); err != nil {
		return err
	}
	d.at = keyPos(value, "name", "text")
	return nil
}

// keyPos returns the position of the value of the first key of a mapping
// node that is present, or the position of the mapping itself.
func keyPos(m *yaml.Node, keys ...string) pos {
	if m.Kind == yaml.MappingNode {
		for _, key := range keys {
			for i := 0; i+1 < len(m.Content); i += 2 {
				if m.Content[i].Value == key {
					return posOf(m.Content[i+1])
				}
			}
		}
	}
	return posOf(m)
}
