// Package ui renders compile progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"glaze/internal/buildpipeline"
)

// stageInfo is how a stage looks in the list: the verb shown while it runs
// and how far along a file in it is.
type stageInfo struct {
	verb   string
	weight float64
}

var stages = map[buildpipeline.Stage]stageInfo{
	buildpipeline.StagePreprocess: {"preprocessing", 0.1},
	buildpipeline.StageCheck:      {"checking", 0.4},
	buildpipeline.StageWatch:      {"checking", 0.4},
	buildpipeline.StageEmit:       {"emitting", 0.7},
	buildpipeline.StageBundle:     {"bundling", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const statusWidth = 14

type fileItem struct {
	path   string
	stage  buildpipeline.Stage
	status buildpipeline.Status
}

// label is the text of the status column.
func (f fileItem) label() string {
	if f.status == buildpipeline.StatusWorking {
		return stages[f.stage].verb
	}
	return string(f.status)
}

func (f fileItem) fraction() float64 {
	switch f.status {
	case buildpipeline.StatusDone, buildpipeline.StatusError:
		return 1
	case buildpipeline.StatusQueued:
		return 0
	}
	return stages[f.stage].weight
}

func (f fileItem) style() lipgloss.Style {
	switch f.status {
	case buildpipeline.StatusDone:
		return doneStyle
	case buildpipeline.StatusError:
		return errorStyle
	case buildpipeline.StatusWorking:
		return workingStyle
	}
	return idleStyle
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	files   []fileItem
	byPath  map[string]int
	run     fileItem // состояние всего прогона (File == "")
	width   int
	done    bool
}

type (
	eventMsg buildpipeline.Event
	doneMsg  struct{}
)

// NewProgressModel returns a Bubble Tea model that lists files and their stage
// until events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(workingStyle)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.add(f)
	}
	return m
}

func (m *progressModel) add(path string) int {
	m.byPath[path] = len(m.files)
	m.files = append(m.files, fileItem{path: path, status: buildpipeline.StatusQueued})
	return len(m.files) - 1
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one pipeline event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		m.run = fileItem{stage: ev.Stage, status: ev.Status}
		return nil
	}
	idx, ok := m.byPath[ev.File]
	if !ok {
		// входы становятся известны только после раскрытия entries
		if ev.Status != buildpipeline.StatusQueued {
			return nil
		}
		idx = m.add(ev.File)
	}
	m.files[idx].stage, m.files[idx].status = ev.Stage, ev.Status

	var sum float64
	for _, f := range m.files {
		sum += f.fraction()
	}
	return m.bar.SetPercent(sum / float64(len(m.files)))
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	header := m.title
	if l := m.run.label(); l != "" {
		header += " (" + l + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusWidth-4, 20)
	failed := 0
	for _, f := range m.files {
		if f.status == buildpipeline.StatusError {
			failed++
		}
		status := f.style().Render(fmt.Sprintf("%*s", statusWidth, f.label()))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(f.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	if failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d of %d files failed", failed, len(m.files))))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens value to width display cells, ending in "..." when
// there is room for it.
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
