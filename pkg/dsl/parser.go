package dsl

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
		{Name: "Ratio", Pattern: `\d+(?:\.\d+)?:\d+(?:\.\d+)?`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}(),:!]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
	)
)

// =============================================================================
// AST
// =============================================================================

// Document is the root of a layout file: a sequence of top-level nodes.
type Document struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Nodes []*Node        `parser:"@@*" json:"nodes"`
}

// Node is either a conditional or a box declaration.
type Node struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Cond *Cond          `parser:"  @@" json:"cond,omitempty"`
	Box  *Box           `parser:"| @@" json:"box,omitempty"`
}

// Cond selects between two child lists based on a named flag.
type Cond struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Negate bool           `parser:"'if' @'!'?" json:"negate,omitempty"`
	Flag   string         `parser:"@Ident" json:"flag"`
	Then   *Block         `parser:"@@" json:"then"`
	Else   *Block         `parser:"( 'else' @@ )?" json:"else,omitempty"`
}

// Block is a braced list of child nodes.
type Block struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Nodes []*Node        `parser:"'{' @@* '}'" json:"nodes"`
}

// Box declares one layout node: its kind, an optional surface name, optional
// attributes and optional children.
type Box struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Kind     string         `parser:"@Ident" json:"kind"`
	Name     string         `parser:"@String?" json:"name,omitempty"`
	Attrs    []*Attr        `parser:"( '(' ( @@ ( ',' @@ )* ','? )? ')' )?" json:"attrs,omitempty"`
	Children *Block         `parser:"@@?" json:"children,omitempty"`
}

// Attr is a single key: value attribute.
type Attr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'" json:"key"`
	Value Value          `parser:"@@" json:"value"`
}

// Value is a ratio (16:9), a number, or a bare word (inf, leading, ...).
type Value struct {
	Ratio  string `parser:"  @Ratio" json:"ratio,omitempty"`
	Number string `parser:"| @Number" json:"number,omitempty"`
	Word   string `parser:"| @Ident" json:"word,omitempty"`
}

func (v Value) String() string {
	switch {
	case v.Ratio != "":
		return v.Ratio
	case v.Number != "":
		return v.Number
	}
	return v.Word
}

// =============================================================================
// Parsing
// =============================================================================

// Parse parses layout source from r. filename is only used in error positions.
func Parse(filename string, r io.Reader) (*Document, error) {
	doc, err := documentParser.Parse(filename, r)
	if err != nil {
		return nil, sourceError(err)
	}
	return doc, nil
}

// ParseString parses layout source held in memory.
func ParseString(filename, src string) (*Document, error) {
	doc, err := documentParser.ParseString(filename, src)
	if err != nil {
		return nil, sourceError(err)
	}
	return doc, nil
}

func sourceError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return errs.Wrap(errs.ErrCodeInvalidSource, &errs.SourceError{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
			Message:  perr.Message(),
		}, "parse layout")
	}
	return errs.Wrap(errs.ErrCodeInvalidSource, err, "parse layout")
}

// Flags returns the sorted, de-duplicated flag names referenced by conditionals.
func (d *Document) Flags() []string {
	seen := map[string]bool{}
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			switch {
			case n.Cond != nil:
				seen[n.Cond.Flag] = true
				walk(n.Cond.Then.Nodes)
				if n.Cond.Else != nil {
					walk(n.Cond.Else.Nodes)
				}
			case n.Box != nil && n.Box.Children != nil:
				walk(n.Box.Children.Nodes)
			}
		}
	}
	walk(d.Nodes)

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Surfaces returns the element names in first-appearance order, across all branches.
func (d *Document) Surfaces() []string {
	seen := map[string]bool{}
	var out []string
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			switch {
			case n.Cond != nil:
				walk(n.Cond.Then.Nodes)
				if n.Cond.Else != nil {
					walk(n.Cond.Else.Nodes)
				}
			case n.Box != nil:
				if strings.EqualFold(n.Box.Kind, kindElement) && n.Box.Name != "" && !seen[n.Box.Name] {
					seen[n.Box.Name] = true
					out = append(out, n.Box.Name)
				}
				if n.Box.Children != nil {
					walk(n.Box.Children.Nodes)
				}
			}
		}
	}
	walk(d.Nodes)
	return out
}
