// Package watch orchestrates an incremental build session: it serves the
// session a synthetic configuration, preprocesses every source it reads,
// deduplicates writes and buffers diagnostics until the session goes idle,
// then flushes them ordered by import-discovery rank.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"glaze/internal/diag"
	"glaze/internal/preprocess"
	"glaze/internal/source"
	"glaze/internal/toolchain"
	"glaze/internal/trace"
	"glaze/internal/vhost"
)

// Verbosity levels for status output.
const (
	// VerbosityQuiet prints only the idle summary.
	VerbosityQuiet = iota
	// VerbosityNormal adds build start and change notifications.
	VerbosityNormal
	// VerbosityDebug adds informational signals.
	VerbosityDebug
)

// Options configures Start.
type Options struct {
	Roots    []string
	Compiler toolchain.CompilerOptions
	Disk     vhost.Disk
	// ExactFiles activates the allow-list when non-nil.
	ExactFiles []string
	Aliases    []vhost.Alias
	Pipeline   *preprocess.Pipeline

	Verbosity int
	// Log receives status lines; nil discards them.
	Log io.Writer
	// OnChange is called with every written module output whose content changed.
	OnChange func(path string)
	// Reporter receives each flushed diagnostic, in flush order.
	Reporter diag.Reporter
	// OnFlush receives the complete diagnostics of a finished build.
	OnFlush func([]diag.Diagnostic)
	// OnError receives the fatal error that stopped background rebuilds.
	OnError func(error)

	// PollInterval and PollAttempts bound the wait for the first program
	// when the import-order index is built.
	PollInterval time.Duration
	PollAttempts int
	// NoWatcher disables file-system events (rebuilds only through Rebuild).
	NoWatcher bool
}

// Session is a running watch.
type Session struct {
	ctx        context.Context
	opts       Options
	configPath string
	configText string
	host       *sessionHost
	session    *toolchain.WatchSession

	mu      sync.Mutex
	pending *diag.Bag
	dedup   *diag.DedupReporter // сбрасывается на каждом flush
	last    []diag.Diagnostic
	index   ImportOrderIndex
	fatal   error
	stopped bool
	builds  int
}

// Start performs the first build and returns once its diagnostics have been
// flushed. Later builds run in the background until Stop.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if opts.Pipeline == nil {
		opts.Pipeline = preprocess.New(nil)
	}
	if opts.Disk == nil {
		opts.Disk = vhost.OSDisk{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Millisecond
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 50
	}
	if opts.Log == nil {
		opts.Log = io.Discard
	}

	s := newSession(ctx, opts)
	roots := make([]string, len(opts.Roots))
	for i, r := range opts.Roots {
		roots[i] = vhost.Key(r)
	}
	s.configPath = syntheticConfigPath(roots, opts.Disk)
	text, err := toolchain.ProjectConfig{Files: roots, Compiler: opts.Compiler}.Encode()
	if err != nil {
		return nil, err
	}
	s.configText = text

	compiler := opts.Compiler
	if compiler.Paths == nil {
		compiler.Paths = vhost.AliasPaths(opts.Aliases)
	}
	host := vhost.New(ctx, vhost.Options{
		Disk:       opts.Disk,
		ExactFiles: opts.ExactFiles,
		Aliases:    opts.Aliases,
		// в watch-режиме асинхронный transform недопустим
		Load: opts.Pipeline.Loader(ctx, opts.Disk.ReadFile, false),
	})
	s.host = &sessionHost{Host: host, s: s, written: make(map[string][32]byte)}

	s.session = toolchain.NewWatchSession(toolchain.WatchOptions{
		Host:         s.host,
		ConfigPath:   s.configPath,
		OnDiagnostic: s.collect,
		OnStatus:     s.status,
		OnError:      s.fail,
		NoWatcher:    opts.NoWatcher,
	})
	startCtx, span := trace.StartSpan(ctx, trace.ScopeDriver, "watch.start")
	if err := s.session.Start(startCtx); err != nil {
		span.Fail(err).End("failed")
		return nil, err
	}
	span.End("")
	return s, nil
}

func newSession(ctx context.Context, opts Options) *Session {
	s := &Session{ctx: ctx, opts: opts, pending: diag.NewBag(0)}
	s.dedup = diag.NewDedupReporter(diag.FuncReporter(func(d diag.Diagnostic) { s.pending.Add(d) }))
	return s
}

// syntheticConfigPath picks a configuration path next to the roots that is not
// a file on disk.
func syntheticConfigPath(roots []string, disk vhost.Disk) string {
	dir := "."
	if len(roots) > 0 {
		dir = filepath.Dir(roots[0])
	}
	for i := 0; ; i++ {
		name := fmt.Sprintf("glaze.watch.%d.%d.toml", os.Getpid(), i)
		p := source.CleanPath(filepath.Join(dir, name))
		if !disk.Exists(p) {
			return p
		}
	}
}

// ConfigPath returns the synthetic configuration path.
func (s *Session) ConfigPath() string { return s.configPath }

// Program returns the program of the last build.
func (s *Session) Program() *toolchain.Program { return s.session.Program() }

// Host returns the session's compiler host.
func (s *Session) Host() toolchain.Host { return s.host }

// Outputs returns every path written during the session.
func (s *Session) Outputs() []string { return s.host.Outputs() }

// Diagnostics returns the diagnostics of the last flush.
func (s *Session) Diagnostics() []diag.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]diag.Diagnostic(nil), s.last...)
}

// Index returns the import-order index, nil before it is built.
func (s *Session) Index() ImportOrderIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Err returns the fatal error that stopped background rebuilds.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// Builds returns how many builds have been flushed.
func (s *Session) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}

// Status summarises the session for heartbeats: builds so far and the error
// count of the last one.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatal != nil {
		return fmt.Sprintf("stopped after %d builds: %v", s.builds, s.fatal)
	}
	return fmt.Sprintf("%d builds, %d errors", s.builds, diag.CountErrors(s.last))
}

// Rebuild runs one build for the changed paths without waiting for file events.
func (s *Session) Rebuild(ctx context.Context, changed ...string) error {
	return s.session.Rebuild(ctx, changed...)
}

// Stop closes the incremental session. A write in progress is not rolled back.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	s.session.Close()
}

// collect buffers d for the next flush. A build that reports the same
// diagnostic twice shows it once.
func (s *Session) collect(d diag.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dedup.Report(d)
}

func (s *Session) status(st toolchain.Status) {
	tracer := trace.FromContext(s.ctx)
	trace.Point(tracer, trace.ScopeDriver, "watch.status."+st.Kind.String(), st.Message)
	switch st.Kind {
	case toolchain.StatusIdle:
		s.flush()
		s.logf("%s", st.Message)
	case toolchain.StatusInfo:
		if s.opts.Verbosity >= VerbosityDebug {
			s.logf("%s", st.Message)
		}
	default:
		if s.opts.Verbosity >= VerbosityNormal {
			s.logf("%s", st.Message)
		}
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.fatal = err
	s.mu.Unlock()
	s.logf("watch stopped: %v", err)
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}

// flush сортирует накопленные диагностики по рангу импорта и отдаёт их репортеру.
func (s *Session) flush() {
	index := s.Index()
	if index == nil {
		index = s.buildIndex()
	}

	s.mu.Lock()
	bag := s.pending
	s.pending = diag.NewBag(0)
	s.dedup.Forget()
	s.mu.Unlock()

	if index != nil {
		bag.SortByRank(index.Rank)
	}
	items := bag.Items()
	if s.opts.Reporter != nil {
		for _, d := range items {
			s.opts.Reporter.Report(d)
		}
	}

	s.mu.Lock()
	s.last = items
	s.builds++
	s.mu.Unlock()
	if s.opts.OnFlush != nil {
		s.opts.OnFlush(items)
	}
}

// buildIndex ждёт появления программы (на первой сборке её может ещё не быть).
func (s *Session) buildIndex() ImportOrderIndex {
	for attempt := 0; attempt < s.opts.PollAttempts; attempt++ {
		if prog := s.session.Program(); prog != nil {
			ix := BuildIndex(prog.SourcePaths())
			s.mu.Lock()
			s.index = ix
			s.mu.Unlock()
			return ix
		}
		time.Sleep(s.opts.PollInterval)
	}
	return nil
}

func (s *Session) logf(format string, args ...any) {
	fmt.Fprintf(s.opts.Log, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}
