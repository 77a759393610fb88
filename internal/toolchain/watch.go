package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"glaze/internal/diag"
	"glaze/internal/source"
	"glaze/internal/trace"
)

// StatusKind classifies watch status signals.
type StatusKind uint8

const (
	StatusStarting StatusKind = iota
	StatusChangeDetected
	// StatusIdle ends every build: the session waits for file changes.
	StatusIdle
	StatusInfo
)

func (k StatusKind) String() string {
	switch k {
	case StatusStarting:
		return "starting"
	case StatusChangeDetected:
		return "change"
	case StatusIdle:
		return "idle"
	default:
		return "info"
	}
}

// Status is one watch status signal.
type Status struct {
	Kind    StatusKind
	Message string
	// Errors is the error count of the finished build (StatusIdle only).
	Errors int
}

// IdleMessage is the idle signal text for n errors.
func IdleMessage(n int) string {
	if n == 1 {
		return "Found 1 error. Watching for file changes."
	}
	return fmt.Sprintf("Found %d errors. Watching for file changes.", n)
}

// DefaultDebounce groups file events arriving close together into one rebuild.
const DefaultDebounce = 50 * time.Millisecond

// WatchOptions configures a WatchSession.
type WatchOptions struct {
	Host Host
	// ConfigPath is read through Host before every build and decoded with
	// ParseProjectConfig. It does not have to exist on disk.
	ConfigPath   string
	OnDiagnostic func(diag.Diagnostic)
	OnStatus     func(Status)
	// OnError receives a fatal error of a background rebuild; the session
	// stops watching afterwards. It runs on the watch goroutine and must not
	// call Close directly.
	OnError  func(error)
	Debounce time.Duration
	// NoWatcher disables file-system events; rebuilds happen only through Rebuild.
	NoWatcher bool
}

// WatchSession rebuilds a program whenever its files change.
type WatchSession struct {
	opts    WatchOptions
	watcher *fsnotify.Watcher

	buildMu sync.Mutex
	mu      sync.Mutex
	program *Program
	watched map[string]bool
	outputs map[string]bool
	outDir  string
	err     error

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWatchSession returns an idle session; Start runs the first build.
func NewWatchSession(opts WatchOptions) *WatchSession {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &WatchSession{
		opts:    opts,
		watched: make(map[string]bool),
		outputs: make(map[string]bool),
		done:    make(chan struct{}),
	}
}

// Start runs the initial build and then watches for changes in the
// background. An error of the initial build is returned and nothing is watched.
func (s *WatchSession) Start(ctx context.Context) error {
	if !s.opts.NoWatcher {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = w
	}
	s.status(Status{Kind: StatusStarting, Message: "Starting compilation in watch mode..."})
	if err := s.Rebuild(ctx); err != nil {
		s.Close()
		return err
	}
	if s.watcher != nil {
		s.wg.Add(1)
		go s.loop(ctx)
	}
	return nil
}

// Program returns the program of the last finished build, nil before the first.
func (s *WatchSession) Program() *Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Err returns the fatal error that stopped the background loop, if any.
func (s *WatchSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops watching. A build in progress finishes first.
func (s *WatchSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			_ = s.watcher.Close()
		}
	})
	s.wg.Wait()
}

// Rebuild invalidates changed paths in the host and runs one build, ending
// with an idle signal. Only host failures are returned; problems in the
// sources are diagnostics.
func (s *WatchSession) Rebuild(ctx context.Context, changed ...string) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	select {
	case <-s.done:
		return nil
	default:
	}

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "watch.build")
	defer span.End("")
	span.WithExtra("changed", fmt.Sprint(len(changed)))

	if inv, ok := s.opts.Host.(Invalidator); ok {
		for _, path := range changed {
			inv.Invalidate(path)
		}
	}

	text, err := s.opts.Host.ReadFile(s.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read project config %s: %w", s.opts.ConfigPath, err)
	}
	cfg, cfgDiags := ParseProjectConfig(text)
	errorsFound := s.report(cfgDiags)
	if errorsFound > 0 {
		s.status(Status{Kind: StatusIdle, Message: IdleMessage(errorsFound), Errors: errorsFound})
		return nil
	}

	prog, err := NewProgram(ctx, s.opts.Host, cfg.Files, cfg.Compiler)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.program = prog
	s.outDir = cfg.Compiler.OutDir
	s.mu.Unlock()

	errorsFound += s.report(Check(ctx, prog))
	emitted := Emit(ctx, prog)
	errorsFound += s.report(emitted.Diagnostics)

	s.mu.Lock()
	for _, out := range emitted.Outputs {
		s.outputs[out] = true
	}
	s.mu.Unlock()
	s.watchDirs(prog)

	s.status(Status{Kind: StatusIdle, Message: IdleMessage(errorsFound), Errors: errorsFound})
	return nil
}

func (s *WatchSession) report(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity >= diag.SevError {
			n++
		}
		if s.opts.OnDiagnostic != nil {
			s.opts.OnDiagnostic(d)
		}
	}
	return n
}

func (s *WatchSession) status(st Status) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(st)
	}
}

func (s *WatchSession) watchDirs(p *Program) {
	if s.watcher == nil {
		return
	}
	dirs := make([]string, 0, len(p.order)+len(p.missing))
	for _, path := range p.order {
		dirs = append(dirs, filepath.Dir(path))
	}
	for _, path := range p.missing {
		dirs = append(dirs, filepath.Dir(path))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dir := range dirs {
		if s.watched[dir] {
			continue
		}
		if err := s.watcher.Add(dir); err != nil {
			s.status(Status{Kind: StatusInfo, Message: fmt.Sprintf("cannot watch %s: %v", dir, err)})
			continue
		}
		s.watched[dir] = true
	}
}

// relevant отбрасывает события по собственным выходным файлам и не-исходникам.
func (s *WatchSession) relevant(path string) bool {
	path = source.CleanPath(path)
	if !isSourcePath(path) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outputs[path] {
		return false
	}
	if s.outDir != "" && WithinDir(path, source.CleanPath(s.outDir)) {
		return false
	}
	return true
}

func (s *WatchSession) loop(ctx context.Context) {
	defer s.wg.Done()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !s.relevant(ev.Name) {
				continue
			}
			pending[source.CleanPath(ev.Name)] = struct{}{}
			timer.Reset(s.opts.Debounce)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.status(Status{Kind: StatusInfo, Message: fmt.Sprintf("watcher error: %v", err)})
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			clear(pending)
			slices.Sort(changed)
			s.status(Status{Kind: StatusChangeDetected, Message: "File change detected. Starting incremental compilation... (" +
				strings.Join(changed, ", ") + ")"})
			if err := s.Rebuild(ctx, changed...); err != nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				if s.opts.OnError != nil {
					s.opts.OnError(err)
				}
				return
			}
		}
	}
}
