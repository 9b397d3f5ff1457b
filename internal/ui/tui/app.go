package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iwatobipen/entry-cli/internal/domain"
)

type screen int

const (
	screenHome screen = iota
	screenSets
	screenSetPreview
	screenProfiles
	screenRunWizard
	screenRunning
	screenRunResults
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type refItem struct {
	name string
	path string
}

func (r refItem) Title() string       { return r.name }
func (r refItem) Description() string { return r.path }
func (r refItem) FilterValue() string { return r.name }

type model struct {
	theme Theme
	deps  Deps

	scr   screen
	menu  list.Model
	picks list.Model
	spin  spinner.Model

	workspaceFound bool
	workspaceRoot  string

	// run wizard state
	wizardStep  int // 0 = pick set, 1 = pick profile
	pickedSet   string
	pickedName  string
	running     bool
	lastRun     domain.RunResult
	lastRunID   string
	lastRunErr  error
	previewText string
	toast       string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Run", "Compute shape descriptors for a molecule set"},
		menuItem{"Sets", "Browse molecule sets in this workspace"},
		menuItem{"Profiles", "Browse conformer profiles"},
		menuItem{"Init Workspace", "Create entry-cli.yaml, sets/ and profiles/ here"},
		menuItem{"Quit", "Exit entry-cli"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "entry-cli"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	picks := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picks.SetShowStatusBar(false)
	picks.SetFilteringEnabled(true)
	picks.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		theme: t,
		deps:  deps,
		scr:   screenHome,
		menu:  l,
		picks: picks,
		spin:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return cmdRefreshWorkspace(m.deps)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := msg.Width, msg.Height
		m.menu.SetSize(w-4, h-10)
		m.picks.SetSize(w-4, h-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if msg.err != nil && m.deps.Debug {
			m.toast = userMessage(msg.err)
		}
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace initialized at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case setsLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.scr = screenHome
			return m, nil
		}
		m.picks.SetItems(setRefItems(msg.refs))
		m.picks.ResetSelected()
		return m, nil

	case profilesLoadedMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.scr = screenHome
			return m, nil
		}
		m.picks.SetItems(profileRefItems(msg.refs))
		m.picks.ResetSelected()
		return m, nil

	case setPreviewMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.previewText = msg.preview
		m.scr = screenSetPreview
		return m, nil

	case runnerDoneMsg:
		m.running = false
		m.lastRun = msg.run
		m.lastRunID = msg.id
		m.lastRunErr = msg.err
		m.scr = screenRunResults
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToList(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Never intercept keys while a list filter prompt is open.
	if m.filteringNow() {
		return m.routeToList(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		if m.scr == screenRunning {
			return m, nil // a run is in flight; results arrive shortly
		}
		return m.goHome(), nil

	case "esc", "b":
		switch m.scr {
		case screenHome, screenRunning:
			return m, nil
		case screenSetPreview:
			m.scr = screenSets
			return m, nil
		case screenRunWizard:
			if m.wizardStep == 1 {
				m.wizardStep = 0
				m.picks.Title = "Pick a set"
				m.picks.SetItems(nil)
				return m, cmdLoadSets(m.workspaceRoot)
			}
			return m.goHome(), nil
		default:
			return m.goHome(), nil
		}

	case "enter":
		return m.handleEnter()
	}

	return m.routeToList(msg)
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.scr {
	case screenHome:
		it, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		return m.openMenu(it.title)

	case screenSets:
		it, ok := m.picks.SelectedItem().(refItem)
		if !ok {
			return m, nil
		}
		return m, cmdPreviewSet(it.path)

	case screenRunWizard:
		it, ok := m.picks.SelectedItem().(refItem)
		if !ok {
			return m, nil
		}
		if m.wizardStep == 0 {
			m.pickedSet = it.path
			m.pickedName = it.name
			m.wizardStep = 1
			m.picks.Title = "Pick a profile for " + it.name
			m.picks.SetItems(nil)
			return m, cmdLoadProfiles(m.workspaceRoot)
		}

		m.running = true
		m.scr = screenRunning
		listen := startRunAsync(m.workspaceRoot, m.pickedSet, it.name, m.deps.Logger, m.deps.Debug)
		return m, tea.Batch(listen, m.spin.Tick)

	case screenRunResults:
		return m.goHome(), nil
	}

	return m, nil
}

func (m model) openMenu(title string) (tea.Model, tea.Cmd) {
	switch {
	case strings.EqualFold(title, "Quit"):
		return m, tea.Quit

	case strings.EqualFold(title, "Init Workspace"):
		root := m.workspaceRoot
		if root == "" {
			root = "."
		}
		return m, cmdInitWorkspaceHere(m.deps, root)

	case !m.workspaceFound:
		m.toast = "No workspace found. Use Init Workspace first."
		return m, nil

	case strings.EqualFold(title, "Sets"):
		m.scr = screenSets
		m.picks.Title = "Sets"
		m.picks.SetItems(nil)
		return m, cmdLoadSets(m.workspaceRoot)

	case strings.EqualFold(title, "Profiles"):
		m.scr = screenProfiles
		m.picks.Title = "Profiles"
		m.picks.SetItems(nil)
		return m, cmdLoadProfiles(m.workspaceRoot)

	case strings.EqualFold(title, "Run"):
		m.scr = screenRunWizard
		m.wizardStep = 0
		m.picks.Title = "Pick a set"
		m.picks.SetItems(nil)
		return m, cmdLoadSets(m.workspaceRoot)
	}

	return m, nil
}

func (m model) goHome() model {
	m.scr = screenHome
	m.wizardStep = 0
	m.previewText = ""
	return m
}

func (m model) filteringNow() bool {
	switch m.scr {
	case screenHome:
		return m.menu.FilterState() == list.Filtering
	case screenSets, screenProfiles, screenRunWizard:
		return m.picks.FilterState() == list.Filtering
	}
	return false
}

func (m model) routeToList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.menu, cmd = m.menu.Update(msg)
	case screenSets, screenProfiles, screenRunWizard:
		m.picks, cmd = m.picks.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("entry-cli") + "\n" +
		m.theme.Subtitle.Render("Conformer-averaged molecular shape descriptors") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			"⚠ No workspace found.\n\nUse Init Workspace to create one here.",
		)
	}

	toast := ""
	if m.toast != "" {
		toast = "\n" + m.theme.Help.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + m.theme.Card.Render(m.menu.View()) + "\n" + help)

	case screenSets, screenProfiles, screenRunWizard:
		help := m.theme.Help.Render("↑/↓ navigate • enter select • esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + toast + "\n\n" + m.theme.Card.Render(m.picks.View()) + "\n" + help)

	case screenSetPreview:
		card := m.theme.Card.Render(m.previewText)
		help := m.theme.Help.Render("esc/b back • q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + card + "\n" + help)

	case screenRunning:
		card := m.theme.Card.Render(m.spin.View() + " Generating conformers for " + m.pickedName + "…")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + card)

	case screenRunResults:
		card := m.theme.Card.Render(m.renderRunSummary())
		help := m.theme.Help.Render("enter/q home")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + card + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}

func (m model) renderRunSummary() string {
	var b strings.Builder

	if m.lastRunErr != nil {
		b.WriteString(m.theme.Fail.Render("Run error: " + userMessage(m.lastRunErr)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.Title.Render("Run: " + m.lastRun.SetName))
	if m.lastRunID != "" {
		b.WriteString("  (" + m.lastRunID + ")")
	}
	b.WriteString("\n\n")

	for _, rr := range m.lastRun.Results {
		mark := m.theme.Pass.Render("✓")
		if rr.Failed() {
			mark = m.theme.Fail.Render("✗")
		}
		b.WriteString(mark)
		b.WriteString(" ")
		b.WriteString(rr.Name)
		b.WriteString("\n")
		b.WriteString(renderMoleculeDetails(rr))
	}

	return b.String()
}

func setRefItems(refs []domain.SetRef) []list.Item {
	items := make([]list.Item, 0, len(refs))
	for _, r := range refs {
		items = append(items, refItem{name: r.Name, path: r.Path})
	}
	return items
}

func profileRefItems(refs []domain.ProfileRef) []list.Item {
	items := make([]list.Item, 0, len(refs))
	for _, r := range refs {
		items = append(items, refItem{name: r.Name, path: r.Path})
	}
	return items
}
