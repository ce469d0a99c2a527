package editorsync

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/retypeset/dom"
)

// DefaultCommands are the formatting commands that change rendered content.
var DefaultCommands = []string{
	"Bold", "Italic", "Underline", "Strikethrough",
	"Subscript", "Superscript",
	"InsertUnorderedList", "InsertOrderedList", "Indent", "Outdent",
	"JustifyLeft", "JustifyCenter", "JustifyRight", "JustifyFull",
	"mceInsertTable", "mceTableDelete", "mceTableInsertRowAfter", "mceTableDeleteRow",
	"FontName", "FontSize", "ForeColor", "HiliteColor",
	"mceInsertContent", "mceSetContent", "mceInsertLink", "unlink",
	"RemoveFormat", "Undo", "Redo",
}

type Editor interface {
	Content() string
	SetContent(content string) error
}

// Sync mirrors a source editor into a read-only preview whenever a
// recognized command fires on the source.
type Sync struct {
	source   Editor
	preview  Editor
	commands mapset.Set[string]
	onChange func(content string)
}

type Option func(*Sync)

func WithCommands(commands ...string) Option {
	return func(s *Sync) {
		s.commands = commandSet(commands)
	}
}

// WithOnChange sets the hook called after each copy.
func WithOnChange(fn func(content string)) Option {
	return func(s *Sync) {
		s.onChange = fn
	}
}

func New(source, preview Editor, opts ...Option) *Sync {
	s := &Sync{
		source:   source,
		preview:  preview,
		commands: commandSet(DefaultCommands),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sync) Recognized(command string) bool {
	return s.commands.Contains(strings.ToLower(command))
}

// OnCommand copies the source into the preview if command is recognized and
// reports whether it did. The change hook is skipped when the copy fails.
func (s *Sync) OnCommand(command string) (bool, error) {
	if !s.Recognized(command) {
		return false, nil
	}
	content := s.source.Content()
	if err := s.preview.SetContent(content); err != nil {
		return false, fmt.Errorf("sync preview on %s: %w", command, err)
	}
	if s.onChange != nil {
		s.onChange(content)
	}
	return true, nil
}

func commandSet(commands []string) mapset.Set[string] {
	set := mapset.NewSet[string]()
	for _, c := range commands {
		set.Add(strings.ToLower(c))
	}
	return set
}

// NodeEditor exposes an element's text as editor content. Setting content
// replaces the element's children with a single text node.
type NodeEditor struct {
	Node *dom.Node
}

func (e NodeEditor) Content() string {
	return e.Node.TextContent()
}

// SetContent fails with dom.ErrLeaf on raw nodes, which keep their markup.
func (e NodeEditor) SetContent(content string) error {
	if e.Node.Kind() == dom.TextNode {
		return e.Node.SetText(content)
	}
	return e.Node.ReplaceChildren(e.Node.Document().CreateText(content))
}
