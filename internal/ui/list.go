package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plx/internal/matcher"
)

var (
	_ list.Item = choiceItem{}
	_ list.Item = noneItem{}
)

// choiceItem wraps [matcher.Choice] to implement [list.Item].
type choiceItem struct {
	choice matcher.Choice
}

func (i choiceItem) FilterValue() string { return i.choice.Label }
func (i choiceItem) Title() string       { return i.choice.Label }
func (i choiceItem) Description() string {
	desc := fmt.Sprintf("distance %d", i.choice.Distance)
	if i.choice.Candidate.Album != "" {
		desc = fmt.Sprintf("%s • %s", i.choice.Candidate.Album, desc)
	}
	return desc
}

// noneItem is the trailing "none of these" entry.
type noneItem struct{}

func (noneItem) FilterValue() string { return "" }
func (noneItem) Title() string       { return "None of these" }
func (noneItem) Description() string { return "leave this track out" }
