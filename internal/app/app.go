package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sahilm/fuzzy"

	"github.com/henri123lemoine/aerun/internal/config"
	"github.com/henri123lemoine/aerun/internal/debug"
	"github.com/henri123lemoine/aerun/internal/render"
	"github.com/henri123lemoine/aerun/internal/ui"
)

// State represents the current UI state.
type State int

const (
	StateForm State = iota
	StateBrowse
	StateSelectComp
	StateSettings
	StateNotice
	StateHelp
)

// Field identifies one of the three form fields.
type Field int

const (
	FieldProject Field = iota
	FieldComp
	FieldOutput
	fieldCount
)

// Lister reads composition names from a project.
// aftereffects.Lister satisfies it.
type Lister interface {
	List(ctx context.Context, project string) []string
}

// Renderer starts background renders.
// render.Invoker satisfies it.
type Renderer interface {
	Start(ctx context.Context, job render.Job, onLine render.LineFunc, onComplete render.CompleteFunc) *render.Task
}

// Settings holds the live tool paths.
// config.Store satisfies it.
type Settings interface {
	Paths() config.Paths
	Update(config.Paths) error
}

// Deps are the collaborators the shell drives.
type Deps struct {
	Lister     Lister
	Renderer   Renderer
	Settings   Settings
	Reveal     func(path string) error
	ConfigPath string
}

// notice is a queued dialog and the file it can reveal.
type notice struct {
	ui.Notice
	path string
}

// compMatch is a composition that passed the selector filter.
type compMatch struct {
	index   int
	matched []int
}

// Model is the main application model.
type Model struct {
	// Configuration
	config *config.Config
	deps   Deps
	ctx    context.Context

	// Form
	focus        Field
	projectInput textinput.Model
	outputInput  textinput.Model

	// Compositions of the most recently browsed project
	comps          []string
	compIndex      int
	listing        bool
	listingProject string
	spinner        spinner.Model

	// Log pane
	log      viewport.Model
	logLines []string
	running  int

	// Project picker
	picker filepicker.Model

	// Composition selector
	filterInput textinput.Model
	matches     []compMatch
	compCursor  int

	// Settings dialog
	settingsForm  *huh.Form
	settingsDraft *config.Paths

	// Blocking dialogs, oldest first
	notices []notice

	// UI
	state  State
	width  int
	height int
	keys   KeyMap
}

// New creates a new Model.
func New(ctx context.Context, cfg *config.Config, deps Deps) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if deps.Reveal == nil {
		deps.Reveal = func(string) error { return fmt.Errorf("reveal is not available") }
	}

	projectInput := textinput.New()
	projectInput.Placeholder = "/path/to/project.aep"
	projectInput.Focus()

	outputInput := textinput.New()
	outputInput.Placeholder = "/path/to/output" + cfg.Render.DefaultExtension

	filterInput := textinput.New()
	filterInput.Placeholder = "filter..."
	filterInput.Prompt = "/ "
	filterInput.CharLimit = 100

	picker := filepicker.New()
	picker.AllowedTypes = []string{".aep"}
	picker.AutoHeight = false
	picker.ShowPermissions = false
	picker.CurrentDirectory = startDir(cfg.UI.StartDir)
	// esc leaves the picker instead of going up a directory.
	picker.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("←", "back"),
	)

	log := viewport.New(80, 10)
	log.Style = ui.LogStyle

	return Model{
		config:       cfg,
		deps:         deps,
		ctx:          ctx,
		focus:        FieldProject,
		projectInput: projectInput,
		outputInput:  outputInput,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.WarningStyle)),
		log:          log,
		picker:       picker,
		filterInput:  filterInput,
		state:        StateForm,
		keys:         KeyMapFromConfig(&cfg.Keys),
	}
}

// startDir returns the directory the project picker opens in.
func startDir(dir string) string {
	if dir != "" {
		if strings.HasPrefix(dir, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				dir = home + dir[1:]
			}
		}
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.settingsForm != nil {
			form, cmd := m.settingsForm.Update(msg)
			m.settingsForm = form.(*huh.Form)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		// Handle quit globally
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKeyPress(msg)

	case CompsLoadedMsg:
		if msg.Project != m.listingProject {
			debug.Log("app: dropping compositions for %s, current project is %s", msg.Project, m.listingProject)
			return m, nil
		}
		m.listing = false
		m.comps = msg.Comps
		m.compIndex = 0
		debug.Log("app: %d compositions in %s", len(m.comps), msg.Project)
		return m, nil

	case RenderLineMsg:
		m.appendLog(msg.Line)
		return m, listen(msg.stream)

	case RenderDoneMsg:
		if m.running > 0 {
			m.running--
		}
		r := msg.Result
		debug.Log("app: render %s done, exit %d, err %v", r.TaskID, r.ExitCode, r.Err)
		// Start errors were already written to the log by the invoker.
		if r.Err == nil && r.ExitCode != 0 {
			m.appendLog(fmt.Sprintf("%s aerender exited with code %d", ui.SymbolError, r.ExitCode))
		}
		m.pushNotice(notice{
			Notice: ui.Notice{
				Title:     "Done",
				Body:      "Render finished!\nOutput: " + r.Job.Output,
				CanReveal: r.Job.Output != "",
			},
			path: r.Job.Output,
		})
		return m, nil

	case SettingsSavedMsg:
		if msg.Err != nil {
			m.pushNotice(errorNotice("Could not save paths: " + msg.Err.Error()))
			return m, nil
		}
		m.pushNotice(notice{Notice: ui.Notice{Title: "Saved", Body: "Paths updated successfully!"}})
		return m, nil

	case RevealedMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("%s reveal %s: %v", ui.SymbolError, msg.Path, msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.listing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// updateComponents forwards internal messages to the active component.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case StateSettings:
		if m.settingsForm != nil {
			return m.updateSettings(msg)
		}
	case StateBrowse:
		m.picker, cmd = m.picker.Update(msg)
	case StateSelectComp:
		m.filterInput, cmd = m.filterInput.Update(msg)
	default:
		var cmds [2]tea.Cmd
		m.projectInput, cmds[0] = m.projectInput.Update(msg)
		m.outputInput, cmds[1] = m.outputInput.Update(msg)
		cmd = tea.Batch(cmds[:]...)
	}
	return m, cmd
}

// resize fits the components to the terminal.
func (m *Model) resize() {
	w, h := ui.LogSize(m.width, m.height)
	m.log.Width = w
	m.log.Height = h
	m.projectInput.Width = w - 4
	m.outputInput.Width = w - 4
	m.picker.SetHeight(max(m.height-10, 3))
	if m.log.AtBottom() || m.log.PastBottom() {
		m.log.GotoBottom()
	}
}

// handleKeyPress handles key presses based on current state.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateForm:
		return m.handleFormKeys(msg)
	case StateBrowse:
		return m.handleBrowseKeys(msg)
	case StateSelectComp:
		return m.handleSelectCompKeys(msg)
	case StateSettings:
		return m.updateSettings(msg)
	case StateNotice:
		return m.handleNoticeKeys(msg)
	case StateHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

// handleFormKeys handles key presses on the main form.
func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case key.Matches(msg, m.keys.Render):
		return m.startRender()
	case key.Matches(msg, m.keys.Browse):
		m.state = StateBrowse
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	case key.Matches(msg, m.keys.ClearLog):
		m.logLines = nil
		m.log.SetContent("")
		m.log.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.state = StateHelp
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.log.PageUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.log.PageDown()
		return m, nil
	}

	switch m.focus {
	case FieldProject:
		if key.Matches(msg, m.keys.Select) {
			project := strings.TrimSpace(m.projectInput.Value())
			if project == "" {
				return m, nil
			}
			cmd := tea.Batch(m.browseProject(project), m.setFocus(FieldComp))
			return m, cmd
		}
		var cmd tea.Cmd
		m.projectInput, cmd = m.projectInput.Update(msg)
		return m, cmd

	case FieldComp:
		return m.handleCompFieldKeys(msg)

	case FieldOutput:
		if key.Matches(msg, m.keys.Select) {
			m.outputInput.SetValue(render.NormalizeOutput(strings.TrimSpace(m.outputInput.Value()), m.config.Render.DefaultExtension))
			m.outputInput.CursorEnd()
			return m, nil
		}
		var cmd tea.Cmd
		m.outputInput, cmd = m.outputInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleCompFieldKeys cycles through compositions or opens the selector.
func (m Model) handleCompFieldKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.comps) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up), msg.Type == tea.KeyLeft:
		m.compIndex = (m.compIndex + len(m.comps) - 1) % len(m.comps)
		return m, nil
	case key.Matches(msg, m.keys.Down), msg.Type == tea.KeyRight:
		m.compIndex = (m.compIndex + 1) % len(m.comps)
		return m, nil
	case key.Matches(msg, m.keys.Select):
		return m.openSelector("")
	case msg.Type == tea.KeyRunes:
		// Typing on the field starts a search.
		return m.openSelector(string(msg.Runes))
	}
	return m, nil
}

// setFocus moves focus to f.
func (m *Model) setFocus(f Field) tea.Cmd {
	m.focus = f
	m.projectInput.Blur()
	m.outputInput.Blur()
	switch f {
	case FieldProject:
		return m.projectInput.Focus()
	case FieldOutput:
		return m.outputInput.Focus()
	}
	return nil
}

// browseProject starts listing the compositions of project. The previous
// project's compositions are dropped at once so none of them can be rendered
// against the new project.
func (m *Model) browseProject(project string) tea.Cmd {
	m.listing = true
	m.listingProject = project
	m.comps = nil
	m.compIndex = 0
	debug.Log("app: listing compositions of %s", project)
	return tea.Batch(listComps(m.ctx, m.deps.Lister, project), m.spinner.Tick)
}

// startRender validates the form and starts a background render.
func (m Model) startRender() (tea.Model, tea.Cmd) {
	if m.listing {
		m.pushNotice(errorNotice("Compositions are still loading."))
		return m, nil
	}

	job := render.Job{
		Project: m.projectInput.Value(),
		Comp:    m.selectedComp(),
		Output:  m.outputInput.Value(),
	}.Trimmed()

	if err := job.Validate(); err != nil {
		debug.Log("app: %v", err)
		m.pushNotice(errorNotice("Please fill in all fields."))
		return m, nil
	}

	job.Output = render.NormalizeOutput(job.Output, m.config.Render.DefaultExtension)
	m.outputInput.SetValue(job.Output)
	if !render.HasExtension(job.Output, m.config.Render.OutputExtensions) {
		m.appendLog(fmt.Sprintf("warning: %s is not one of %s", job.Output, strings.Join(m.config.Render.OutputExtensions, ", ")))
	}

	m.running++
	return m, startRender(m.ctx, m.deps.Renderer, job)
}

func (m Model) selectedComp() string {
	if m.compIndex < 0 || m.compIndex >= len(m.comps) {
		return ""
	}
	return m.comps[m.compIndex]
}

// handleBrowseKeys handles key presses in the project picker.
func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.state = StateForm
		m.showNextNotice()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.projectInput.SetValue(path)
		m.projectInput.CursorEnd()
		m.state = StateForm
		m.showNextNotice()
		cmd = tea.Batch(cmd, m.browseProject(path), m.setFocus(FieldComp))
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		debug.Log("app: %s is not an After Effects project", path)
	}
	return m, cmd
}

// openSelector shows the filtered composition list.
func (m Model) openSelector(query string) (tea.Model, tea.Cmd) {
	m.state = StateSelectComp
	m.filterInput.SetValue(query)
	m.filterInput.CursorEnd()
	m.applyFilter()
	m.compCursor = 0
	for i, match := range m.matches {
		if match.index == m.compIndex {
			m.compCursor = i
			break
		}
	}
	cmd := m.filterInput.Focus()
	return m, cmd
}

// handleSelectCompKeys handles key presses in the composition selector.
func (m Model) handleSelectCompKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeSelector()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if m.compCursor < len(m.matches) {
			m.compIndex = m.matches[m.compCursor].index
		}
		m.closeSelector()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.compCursor > 0 {
			m.compCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.compCursor < len(m.matches)-1 {
			m.compCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) closeSelector() {
	m.state = StateForm
	m.filterInput.Blur()
	m.filterInput.Reset()
	m.matches = nil
	m.showNextNotice()
}

// applyFilter filters compositions using fuzzy matching.
func (m *Model) applyFilter() {
	filter := m.filterInput.Value()
	m.matches = m.matches[:0]
	if filter == "" {
		for i := range m.comps {
			m.matches = append(m.matches, compMatch{index: i})
		}
	} else {
		for _, match := range fuzzy.Find(filter, m.comps) {
			m.matches = append(m.matches, compMatch{index: match.Index, matched: match.MatchedIndexes})
		}
	}

	// Ensure cursor is in bounds
	if m.compCursor >= len(m.matches) {
		m.compCursor = len(m.matches) - 1
	}
	if m.compCursor < 0 {
		m.compCursor = 0
	}
}

// handleNoticeKeys dismisses the current dialog.
func (m Model) handleNoticeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.notices) == 0 {
		m.state = StateForm
		return m, nil
	}
	current := m.notices[0]

	switch {
	case key.Matches(msg, m.keys.Reveal) && current.CanReveal:
		m.dismissNotice()
		return m, reveal(m.deps.Reveal, current.path)
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Cancel), msg.String() == " ":
		m.dismissNotice()
	}
	return m, nil
}

// handleHelpKeys handles key presses in the help view.
func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes help
	m.state = StateForm
	m.showNextNotice()
	return m, nil
}

// pushNotice queues a dialog. It is shown right away unless the user is in
// the middle of another flow.
func (m *Model) pushNotice(n notice) {
	m.notices = append(m.notices, n)
	if m.state == StateForm {
		m.state = StateNotice
	}
}

func (m *Model) dismissNotice() {
	m.notices = m.notices[1:]
	if len(m.notices) == 0 {
		m.state = StateForm
	}
}

// showNextNotice reopens a dialog that arrived while another flow was open.
func (m *Model) showNextNotice() {
	if m.state == StateForm && len(m.notices) > 0 {
		m.state = StateNotice
	}
}

func errorNotice(body string) notice {
	return notice{Notice: ui.Notice{Title: "Error", Body: body, IsError: true}}
}

// appendLog adds a line to the log pane, following the tail unless the user
// has scrolled up.
func (m *Model) appendLog(line string) {
	follow := m.log.AtBottom() || m.log.PastBottom()

	m.logLines = append(m.logLines, line)
	if limit := m.config.UI.LogLimit; limit > 0 && len(m.logLines) > limit {
		m.logLines = append(m.logLines[:0], m.logLines[len(m.logLines)-limit:]...)
	}
	m.log.SetContent(strings.Join(m.logLines, "\n"))

	if follow {
		m.log.GotoBottom()
	}
}

// LogLines returns the lines currently held by the log pane.
func (m Model) LogLines() []string {
	return m.logLines
}

// View renders the UI.
func (m Model) View() string {
	p := ui.RenderParams{
		State:        int(m.state),
		Width:        m.width,
		Height:       m.height,
		Focus:        int(m.focus),
		ProjectInput: m.projectInput.View(),
		OutputInput:  m.outputInput.View(),
		Comps:        m.comps,
		CompIndex:    m.compIndex,
		Listing:      m.listing,
		SpinnerFrame: m.spinner.View(),
		LogView:      m.log.View(),
		Running:      m.running,
		ConfigPath:   m.deps.ConfigPath,
		FormHelp:     m.formHelp(),
	}
	if m.deps.Settings != nil {
		p.Renderer = m.deps.Settings.Paths().Renderer
	}

	switch m.state {
	case StateBrowse:
		p.PickerView = m.picker.View()
		p.PickerDir = m.picker.CurrentDirectory
	case StateSelectComp:
		p.FilterInput = m.filterInput.View()
		p.CompCursor = m.compCursor
		p.CompItems = make([]ui.CompItem, len(m.matches))
		for i, match := range m.matches {
			p.CompItems[i] = ui.CompItem{Name: m.comps[match.index], Matched: match.matched}
		}
	case StateSettings:
		if m.settingsForm != nil {
			p.SettingsView = m.settingsForm.View()
		}
	case StateNotice:
		if len(m.notices) > 0 {
			n := m.notices[0].Notice
			p.Notice = &n
			p.PendingNotices = len(m.notices) - 1
		}
	case StateHelp:
		p.HelpSections = m.helpSections()
	}

	return ui.Render(p)
}

// formHelp builds the form footer from the active key map.
func (m Model) formHelp() []ui.HelpBinding {
	short := func(b key.Binding, desc string) ui.HelpBinding {
		return ui.HelpBinding{Keys: b.Help().Key, Desc: desc}
	}
	return []ui.HelpBinding{
		short(m.keys.Next, "next"),
		short(m.keys.Browse, "browse"),
		short(m.keys.Render, "render"),
		short(m.keys.Settings, "paths"),
		short(m.keys.ClearLog, "clear"),
		short(m.keys.Help, "help"),
		short(m.keys.Quit, "quit"),
	}
}

// helpSections builds the help view from the active key map.
func (m Model) helpSections() []ui.HelpSection {
	binding := func(b key.Binding) ui.HelpBinding {
		h := b.Help()
		return ui.HelpBinding{Keys: h.Key, Desc: h.Desc}
	}
	return []ui.HelpSection{
		{
			Title: "Form",
			Bindings: []ui.HelpBinding{
				binding(m.keys.Next),
				binding(m.keys.Prev),
				binding(m.keys.Browse),
				binding(m.keys.Render),
				{Keys: "enter", Desc: "list comps (project) / search (composition)"},
				{Keys: "↑/↓ ←/→", Desc: "cycle compositions"},
			},
		},
		{
			Title: "Log",
			Bindings: []ui.HelpBinding{
				binding(m.keys.ScrollUp),
				binding(m.keys.ScrollDown),
				binding(m.keys.ClearLog),
			},
		},
		{
			Title: "General",
			Bindings: []ui.HelpBinding{
				binding(m.keys.Settings),
				binding(m.keys.Reveal),
				binding(m.keys.Help),
				binding(m.keys.Quit),
			},
		},
	}
}
