package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/matcher"
	"github.com/desertthunder/plx/internal/models"
)

// ErrAborted is returned by [Chooser.Ask] when the operator aborts the build.
var ErrAborted = errors.New("build aborted by user")

const (
	chooserWidth     = 80
	chooserMaxHeight = 24
)

// Chooser asks the operator to pick a candidate. It implements matcher.Disambiguator.
//
// Prompts are serialized; each one runs its own short-lived bubbletea program.
type Chooser struct {
	mu      sync.Mutex
	in      io.Reader
	out     io.Writer
	onAbort func()
}

// NewChooser creates a [Chooser] reading keys from in and drawing on out.
// A nil in uses the terminal. onAbort, if set, is called when the operator presses ctrl+c.
func NewChooser(in io.Reader, out io.Writer, onAbort func()) *Chooser {
	return &Chooser{in: in, out: out, onAbort: onAbort}
}

// Ask shows choices followed by "None of these", with the closest choice
// preselected. It returns nil when the operator picks none.
func (c *Chooser) Ask(ctx context.Context, q models.Query, choices []matcher.Choice) (*models.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(c.out)}
	if c.in != nil {
		opts = append(opts, tea.WithInput(c.in))
	}

	final, err := tea.NewProgram(newChooserModel(q, choices), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("chooser for %s: %w", q.Label(), err)
	}

	m, ok := final.(chooserModel)
	if !ok {
		return nil, fmt.Errorf("chooser for %s: unexpected model %T", q.Label(), final)
	}
	if m.aborted {
		if c.onAbort != nil {
			c.onAbort()
		}
		return nil, ErrAborted
	}
	return m.chosen, nil
}

// chooserModel is the bubbletea model behind one prompt.
type chooserModel struct {
	query   models.Query
	list    list.Model
	help    help.Model
	keys    keyMap
	chosen  *models.Candidate
	done    bool
	aborted bool
}

func newChooserModel(q models.Query, choices []matcher.Choice) chooserModel {
	items := make([]list.Item, 0, len(choices)+1)
	for _, c := range choices {
		items = append(items, choiceItem{choice: c})
	}
	items = append(items, noneItem{})

	l := list.New(items, list.NewDefaultDelegate(), chooserWidth, listHeight(len(items)))
	l.Title = fmt.Sprintf("No automatic match for %s", q.Label())
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	if i := matcher.Closest(choices); i >= 0 {
		l.Select(i)
	}

	return chooserModel{query: q, list: l, help: help.New(), keys: newKeyMap()}
}

// listHeight fits every item of the default delegate (two lines plus spacing) and the title.
func listHeight(items int) int {
	return min(items*3+4, chooserMaxHeight)
}

func (m chooserModel) Init() tea.Cmd {
	return nil
}

func (m chooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(min(msg.Width, chooserWidth), min(listHeight(len(m.list.Items())), msg.Height-2))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.aborted = true
			return m, tea.Quit
		}
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.skip):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			m.done = true
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				c := item.choice.Candidate
				m.chosen = &c
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m chooserModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return fmt.Sprintf("%s\n%s", m.list.View(), m.help.View(m.keys))
}
