package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"go.lsp.dev/protocol"

	"github.com/standardbeagle/vbsym/internal/config"
	"github.com/standardbeagle/vbsym/internal/features"
	"github.com/standardbeagle/vbsym/internal/fuzzy"
	"github.com/standardbeagle/vbsym/internal/symbols"
	"github.com/standardbeagle/vbsym/internal/workspace"
	"github.com/standardbeagle/vbsym/pkg/pathutil"
)

// openedFile is a source file with its built symbol table.
type openedFile struct {
	cfg   *config.Config
	doc   *workspace.Document
	table *symbols.SymbolTable
}

func openFile(c *cli.Context, path string) (*openedFile, error) {
	cfg, err := loadConfig(c, ".")
	if err != nil {
		return nil, err
	}
	treePath := c.String("tree")
	if treePath == "" {
		treePath = cfg.TreePath(path)
	}
	doc, err := workspace.LoadDocument(path, treePath, cfg.Index.MaxFileSize)
	if err != nil {
		return nil, err
	}
	table := symbols.BuildSymbolTable(doc.URI, doc.Source, doc.Tree, tableOptions(cfg)...)
	return &openedFile{cfg: cfg, doc: doc, table: table}, nil
}

func tableOptions(cfg *config.Config) []symbols.Option {
	return []symbols.Option{symbols.WithScopeIndexLimit(uint32(cfg.Index.MaxScopeLines))}
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return fmt.Errorf("usage: vbsym %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// positionArg reads 1-based LINE and COL arguments starting at index i.
func positionArg(c *cli.Context, i int) (symbols.Position, error) {
	line, err := strconv.Atoi(c.Args().Get(i))
	if err != nil || line < 1 {
		return symbols.Position{}, fmt.Errorf("invalid line %q: expected a number starting at 1", c.Args().Get(i))
	}
	col, err := strconv.Atoi(c.Args().Get(i + 1))
	if err != nil || col < 1 {
		return symbols.Position{}, fmt.Errorf("invalid column %q: expected a number starting at 1", c.Args().Get(i+1))
	}
	return symbols.Pos(uint32(line-1), uint32(col-1)), nil
}

// openAt handles the common FILE LINE COL prefix.
func openAt(c *cli.Context, extra int) (*openedFile, symbols.Position, error) {
	if err := requireArgs(c, 3+extra); err != nil {
		return nil, symbols.Position{}, err
	}
	pos, err := positionArg(c, 1)
	if err != nil {
		return nil, symbols.Position{}, err
	}
	f, err := openFile(c, c.Args().First())
	if err != nil {
		return nil, symbols.Position{}, err
	}
	return f, pos, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatPosition(p protocol.Position) string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// formatLocation renders loc as path:line:col, relative to root when inside
// it.
func formatLocation(root string, loc protocol.Location) string {
	return pathutil.URIToRelative(loc.URI, root) + ":" + formatPosition(loc.Range.Start)
}

func outlineCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	f, err := openFile(c, c.Args().First())
	if err != nil {
		return err
	}
	outline := features.DocumentSymbols(f.table)
	if c.Bool("json") {
		return writeJSON(c.App.Writer, outline)
	}
	printOutline(c.App.Writer, outline, 0)
	return nil
}

func printOutline(w io.Writer, syms []protocol.DocumentSymbol, depth int) {
	for _, s := range syms {
		fmt.Fprintf(w, "%s%s  %s  %s\n", strings.Repeat("  ", depth), s.Name, s.Detail, formatPosition(s.SelectionRange.Start))
		printOutline(w, s.Children, depth+1)
	}
}

func hoverCommand(c *cli.Context) error {
	f, pos, err := openAt(c, 0)
	if err != nil {
		return err
	}
	hover := features.Hover(f.table, pos)
	if c.Bool("json") {
		return writeJSON(c.App.Writer, hover)
	}
	if hover == nil {
		fmt.Fprintln(c.App.Writer, "no symbol")
		return nil
	}
	fmt.Fprintln(c.App.Writer, hover.Contents.Value)
	return nil
}

func definitionCommand(c *cli.Context) error {
	f, pos, err := openAt(c, 0)
	if err != nil {
		return err
	}
	loc := features.Definition(f.table, string(f.doc.Source), pos)
	if c.Bool("json") {
		return writeJSON(c.App.Writer, loc)
	}
	if loc == nil {
		fmt.Fprintln(c.App.Writer, "no definition")
		return nil
	}
	fmt.Fprintln(c.App.Writer, formatLocation(f.cfg.Root, *loc))
	return nil
}

func referencesCommand(c *cli.Context) error {
	f, pos, err := openAt(c, 0)
	if err != nil {
		return err
	}
	locs := features.References(f.table, pos, !c.Bool("no-declaration"))
	if c.Bool("json") {
		if locs == nil {
			locs = []protocol.Location{}
		}
		return writeJSON(c.App.Writer, locs)
	}
	for _, loc := range locs {
		fmt.Fprintln(c.App.Writer, formatLocation(f.cfg.Root, loc))
	}
	return nil
}

func completeCommand(c *cli.Context) error {
	f, pos, err := openAt(c, 0)
	if err != nil {
		return err
	}
	opts := features.CompletionOptions{
		Fuzzy:          f.cfg.Completion.Fuzzy,
		FuzzyThreshold: f.cfg.Completion.FuzzyThreshold,
		MaxItems:       f.cfg.Completion.MaxItems,
		Keywords:       f.cfg.Completion.Keywords,
	}
	items := features.Completion(f.table, string(f.doc.Source), pos, opts)
	if c.Bool("json") {
		if items == nil {
			items = []protocol.CompletionItem{}
		}
		return writeJSON(c.App.Writer, items)
	}
	for _, item := range items {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", item.Label, item.Detail)
	}
	return nil
}

func renameCommand(c *cli.Context) error {
	f, pos, err := openAt(c, 1)
	if err != nil {
		return err
	}
	newName := c.Args().Get(3)
	edit, err := features.Rename(f.table, pos, newName)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, edit)
	}
	edits := edit.Changes[f.table.URI()]
	path := pathutil.ToRelative(f.doc.Path, f.cfg.Root)
	for _, e := range edits {
		fmt.Fprintf(c.App.Writer, "%s:%s-%s %s\n", path,
			formatPosition(e.Range.Start), formatPosition(e.Range.End), e.NewText)
	}
	fmt.Fprintf(c.App.Writer, "%d edits\n", len(edits))
	return nil
}

type lookupResult struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	Signature string            `json:"signature"`
	Location  protocol.Location `json:"location"`
}

func lookupCommand(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	f, err := openFile(c, c.Args().First())
	if err != nil {
		return err
	}
	name := c.Args().Get(1)
	sym := f.table.LookupSymbol(name, symbols.ModuleScope)
	if sym == nil {
		return unknownSymbolError(name, f.table, fuzzy.NewMatcher(true, f.cfg.Completion.FuzzyThreshold, fuzzy.JaroWinkler))
	}

	res := lookupResult{
		Name:      sym.Name,
		Kind:      sym.KindName(),
		Signature: sym.Signature(),
		Location:  protocol.Location{URI: f.table.URI(), Range: sym.NameRange.Protocol()},
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, res)
	}
	fmt.Fprintln(c.App.Writer, res.Signature)
	fmt.Fprintln(c.App.Writer, formatLocation(f.cfg.Root, res.Location))
	return nil
}

// unknownSymbolError names up to three similar module-level names.
func unknownSymbolError(name string, table *symbols.SymbolTable, matcher *fuzzy.Matcher) error {
	seen := map[string]bool{}
	var names []string
	for _, sym := range table.SymbolsInScope(symbols.ModuleScope) {
		if key := strings.ToLower(sym.Name); !seen[key] {
			seen[key] = true
			names = append(names, sym.Name)
		}
	}
	sort.Strings(names)

	matches := matcher.FindMatches(name, names)
	if len(matches) == 0 {
		return fmt.Errorf("no module-level symbol %q", name)
	}
	suggestions := make([]string, 0, 3)
	for _, m := range matches {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, m.Term)
	}
	return fmt.Errorf("no module-level symbol %q; did you mean %s?", name, strings.Join(suggestions, ", "))
}
