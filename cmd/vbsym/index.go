package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/vbsym/internal/config"
	"github.com/standardbeagle/vbsym/internal/debug"
	vberrors "github.com/standardbeagle/vbsym/internal/errors"
	"github.com/standardbeagle/vbsym/internal/fuzzy"
	"github.com/standardbeagle/vbsym/internal/workspace"
	"github.com/standardbeagle/vbsym/pkg/pathutil"
)

// fileReport summarizes one indexed file.
type fileReport struct {
	Path       string `json:"path"`
	Symbols    int    `json:"symbols"`
	Scopes     int    `json:"scopes"`
	References int    `json:"references"`
	Hash       string `json:"hash"`
	Error      string `json:"error,omitempty"`
}

type indexReport struct {
	Root       string       `json:"root"`
	Files      []fileReport `json:"files"`
	Symbols    int          `json:"symbols"`
	References int          `json:"references"`
	Failed     int          `json:"failed"`
	ElapsedMs  int64        `json:"elapsed_ms"`
}

// indexDir builds every matching file below cfg.Root into store with at most
// cfg.Workspace.Workers builds in flight. Per-file failures are reported,
// not fatal.
func indexDir(ctx context.Context, cfg *config.Config, store *workspace.Store) (*indexReport, error) {
	defer debug.Timer("WORKSPACE", "index "+cfg.Root)()
	start := time.Now()
	files, err := workspace.CollectFiles(cfg.Root, cfg.Workspace.Include, cfg.Workspace.Exclude)
	if err != nil {
		return nil, err
	}

	reports := make([]fileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(cfg.Workspace.Workers, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = indexFile(cfg, store, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &indexReport{Root: cfg.Root, Files: reports, ElapsedMs: time.Since(start).Milliseconds()}
	for _, r := range reports {
		if r.Error != "" {
			report.Failed++
			continue
		}
		report.Symbols += r.Symbols
		report.References += r.References
	}
	debug.LogWorkspace("indexed %d files under %s, %d failed\n", len(files), cfg.Root, report.Failed)
	return report, nil
}

func indexFile(cfg *config.Config, store *workspace.Store, path string) fileReport {
	report := fileReport{Path: filepath.ToSlash(pathutil.ToRelative(path, cfg.Root))}

	doc, err := workspace.LoadDocument(path, cfg.TreePath(path), cfg.Index.MaxFileSize)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	snap, _ := store.Update(doc.URI, 1, doc.Source, doc.Tree)
	report.Symbols = snap.Table.SymbolCount()
	report.Scopes = snap.Table.ScopeCount()
	report.References = snap.Table.ReferenceCount()
	report.Hash = fmt.Sprintf("%016x", xxhash.Sum64(doc.Source))
	return report
}

func dirArg(c *cli.Context) (string, error) {
	dir := c.Args().First()
	info, err := os.Stat(dir)
	if err != nil {
		return "", vberrors.NewFileError("stat", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

func indexCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	dir, err := dirArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, dir)
	if err != nil {
		return err
	}

	report, err := indexDir(c.Context, cfg, workspace.NewStore(tableOptions(cfg)...))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}

	var errs []error
	for _, r := range report.Files {
		if r.Error != "" {
			fmt.Fprintf(c.App.ErrWriter, "skipped %s: %s\n", r.Path, r.Error)
			errs = append(errs, fmt.Errorf("%s: %s", r.Path, r.Error))
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d symbols\t%d references\t%s\n", r.Path, r.Symbols, r.References, r.Hash)
	}
	fmt.Fprintf(c.App.Writer, "indexed %d files (%d symbols, %d references) in %dms\n",
		len(report.Files)-report.Failed, report.Symbols, report.References, report.ElapsedMs)
	return vberrors.NewMultiError(errs).ErrorOrNil()
}

func symbolsCommand(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	dir, err := dirArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, dir)
	if err != nil {
		return err
	}

	store := workspace.NewStore(tableOptions(cfg)...)
	report, err := indexDir(c.Context, cfg, store)
	if err != nil {
		return err
	}
	for _, r := range report.Files {
		if r.Error != "" {
			fmt.Fprintf(c.App.ErrWriter, "skipped %s: %s\n", r.Path, r.Error)
		}
	}

	matcher := fuzzy.NewMatcher(cfg.Completion.Fuzzy, cfg.Completion.FuzzyThreshold, fuzzy.JaroWinkler)
	found := store.WorkspaceSymbols(c.Args().Get(1), matcher)
	if c.Bool("json") {
		if found == nil {
			found = []protocol.SymbolInformation{}
		}
		return writeJSON(c.App.Writer, found)
	}
	for _, s := range found {
		name := s.Name
		if s.ContainerName != "" {
			name = s.ContainerName + "." + s.Name
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", name, formatLocation(cfg.Root, s.Location))
	}
	return nil
}

// watchSession rebuilds documents as the watcher reports settled changes.
// Tree dumps map back to their source file, so a source and its tree written
// together cause one rebuild.
type watchSession struct {
	cfg   *config.Config
	store *workspace.Store
	out   io.Writer
	errw  io.Writer

	mu       sync.Mutex
	versions map[string]int32
	rebuilds *workspace.Debouncer[workspace.EventOp]
}

func newWatchSession(cfg *config.Config, store *workspace.Store, out, errw io.Writer) *watchSession {
	s := &watchSession{cfg: cfg, store: store, out: out, errw: errw, versions: make(map[string]int32)}
	s.rebuilds = workspace.NewDebouncer(cfg.Debounce(), s.rebuild)
	return s
}

// watchOptions extends the include patterns with their tree dumps.
func (s *watchSession) watchOptions() workspace.WatchOptions {
	include := append([]string(nil), s.cfg.Workspace.Include...)
	for _, p := range s.cfg.Workspace.Include {
		include = append(include, p+s.cfg.Workspace.TreeSuffix)
	}
	return workspace.WatchOptions{
		Include:  include,
		Exclude:  s.cfg.Workspace.Exclude,
		Debounce: s.cfg.Debounce(),
	}
}

func (s *watchSession) onEvent(ev workspace.Event) {
	source, isTree := strings.CutSuffix(ev.Path, s.cfg.Workspace.TreeSuffix)
	op := ev.Op
	if isTree && op == workspace.FileRemoved {
		// the source stays; its table is kept until a new dump arrives
		return
	}
	s.rebuilds.Request(source, op)
}

func (s *watchSession) rebuild(path string, op workspace.EventOp) {
	if op == workspace.FileRemoved {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		s.store.Remove(uri.File(abs))
		fmt.Fprintf(s.out, "removed %s\n", path)
		return
	}

	doc, err := workspace.LoadDocument(path, s.cfg.TreePath(path), s.cfg.Index.MaxFileSize)
	if err != nil {
		fmt.Fprintf(s.errw, "skipped %s: %v\n", path, err)
		return
	}
	s.mu.Lock()
	s.versions[path]++
	version := s.versions[path]
	s.mu.Unlock()

	snap, applied := s.store.Update(doc.URI, version, doc.Source, doc.Tree)
	if !applied {
		return
	}
	fmt.Fprintf(s.out, "rebuilt %s: %d symbols, %d references\n", path, snap.Table.SymbolCount(), snap.Table.ReferenceCount())
}

func (s *watchSession) close() {
	s.rebuilds.Stop()
}

func watchCommand(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	dir, err := dirArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c, dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout := c.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	store := workspace.NewStore(tableOptions(cfg)...)
	report, err := indexDir(ctx, cfg, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "watching %s (%d files)\n", cfg.Root, len(report.Files)-report.Failed)

	session := newWatchSession(cfg, store, c.App.Writer, c.App.ErrWriter)
	w, err := workspace.NewWatcher(cfg.Root, session.watchOptions(), session.onEvent)
	if err != nil {
		session.close()
		return err
	}

	<-ctx.Done()
	err = w.Close()
	session.close()
	fmt.Fprintf(c.App.Writer, "stopped watching %s\n", cfg.Root)
	return err
}
