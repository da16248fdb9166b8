package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NationalMuseumofDenmark/cip-go/cip"
	"github.com/NationalMuseumofDenmark/cip-go/internal/prefs"
	"github.com/NationalMuseumofDenmark/cip-go/internal/state"
)

// Searcher runs a quick search and returns records keyed by field name.
// *cip.MetadataService satisfies it.
type Searcher interface {
	SearchWithLayout(ctx context.Context, q cip.SearchQuery, params ...cip.Param) (cip.Response, error)
}

// Target names the catalog view the browser searches.
type Target struct {
	Server  string
	Catalog string
	View    string
	Table   string
	Locale  string
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Searcher  Searcher
	Store     *state.Store
	Target    Target
	PollTick  time.Duration
	PageSize  int
	ThemeName string
	LastQuery string
	PrefsPath string
}

const defaultPageSize = 50

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	searcher  Searcher
	store     *state.Store
	target    Target
	prefsPath string
	pollTick  time.Duration
	pageSize  int

	// UI state
	theme       Theme
	keys        keyMap
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = results, 1 = fields
	showHelp    bool

	// Server state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Search state
	input     textinput.Model
	editing   bool
	query     string
	start     int
	total     int64
	items     []map[string]any
	loading   bool
	searchErr error

	selectedRow    int
	detailViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	query := strings.TrimSpace(opts.LastQuery)
	ti := textinput.New()
	ti.Placeholder = "Quick search..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.SetValue(query)

	return Model{
		ctx:       ctx,
		searcher:  opts.Searcher,
		store:     opts.Store,
		target:    opts.Target,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		pageSize:  pageSize,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		input:     ti,
		query:     query,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.query != "" && m.searcher != nil {
		cmds = append(cmds, searchCmd(m.ctx, m.searcher, m.searchQuery(), m.searchParams()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.input.Width = max(m.width-8, 10)
		m.updateDetailViewport()
		return m, nil

	case tickMsg:
		return m, m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case resultsMsg:
		m.handleResults(msg)
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.editing {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.editing = true
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		m.focusedPane = 1 - m.focusedPane
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.focusedPane = 0
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if !m.hasNextPage() {
			return m, nil
		}
		m.start += m.pageSize
		cmd := m.runSearch()
		return m, cmd

	case key.Matches(msg, m.keys.PrevPage):
		if m.start == 0 {
			return m, nil
		}
		m.start = max(m.start-m.pageSize, 0)
		cmd := m.runSearch()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.runSearch()
		return m, cmd
	}

	if m.focusedPane == 1 {
		return m.handleDetailKey(msg)
	}
	return m.handleResultsKey(msg)
}

// handleInputKey handles keyboard input while the search box has focus.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		m.editing = false
		m.input.Blur()
		m.query = strings.TrimSpace(m.input.Value())
		m.start = 0
		m.focusedPane = 0
		m.savePrefs()
		cmd := m.runSearch()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		m.editing = false
		m.input.Blur()
		m.input.SetValue(m.query)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResultsKey moves the selection in the result list.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.items)
	if count == 0 {
		return m, nil
	}

	prev := m.selectedRow
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+m.resultRows()/2, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-m.resultRows()/2, 0)
	case key.Matches(msg, m.keys.Confirm):
		m.focusedPane = 1
		return m, nil
	}
	if m.selectedRow != prev {
		m.updateDetailViewport()
		m.detailViewport.GotoTop()
	}
	return m, nil
}

// handleDetailKey scrolls the field pane.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.HalfViewUp()
	}
	return m, nil
}

// handleTick schedules the next snapshot read.
func (m Model) handleTick() tea.Cmd {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return tea.Batch(cmds...)
}

// handleResults applies a finished search. Answers for a query or page
// that is no longer current are dropped.
func (m *Model) handleResults(msg resultsMsg) {
	if msg.query != m.query || msg.start != m.start {
		return
	}
	m.loading = false
	if msg.err != nil {
		m.searchErr = msg.err
		return
	}
	m.searchErr = nil
	m.items = msg.resp.Items()
	m.total = msg.resp.TotalCount()
	if m.total < int64(len(m.items)) {
		m.total = int64(m.start + len(m.items))
	}
	m.selectedRow = 0
	m.updateDetailViewport()
	m.detailViewport.GotoTop()
}

// runSearch starts a search for the current query and page.
func (m *Model) runSearch() tea.Cmd {
	if m.searcher == nil || m.query == "" {
		m.items = nil
		m.total = 0
		m.start = 0
		m.updateDetailViewport()
		return nil
	}
	m.loading = true
	m.searchErr = nil
	return searchCmd(m.ctx, m.searcher, m.searchQuery(), m.searchParams())
}

func (m Model) searchQuery() cip.SearchQuery {
	return cip.SearchQuery{
		Catalog:     m.target.Catalog,
		View:        m.target.View,
		QuickSearch: m.query,
		StartIndex:  m.start,
		MaxReturned: m.pageSize,
	}
}

func (m Model) searchParams() []cip.Param {
	return []cip.Param{cip.Table(m.target.Table), cip.Locale(m.target.Locale)}
}

func (m Model) hasNextPage() bool {
	return int64(m.start+m.pageSize) < m.total
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastQuery: m.query})
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSearchBar())
	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type resultsMsg struct {
	query string
	start int
	resp  cip.Response
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func searchCmd(ctx context.Context, s Searcher, q cip.SearchQuery, params []cip.Param) tea.Cmd {
	return func() tea.Msg {
		resp, err := s.SearchWithLayout(ctx, q, params...)
		return resultsMsg{query: q.QuickSearch, start: q.StartIndex, resp: resp, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
