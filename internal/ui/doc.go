// Package ui renders match reports and runs the guided-mode chooser.
//
// [Reporter] prints one colored line per resolved track with lipgloss:
// exact matches in green, normalized and operator matches in yellow, failures in red.
//
// [Chooser] implements matcher.Disambiguator with a bubbletea program built on
// charmbracelet/bubbles/list. Candidates are listed with their edit distance to
// the query, the closest one preselected, followed by a "None of these" entry.
// Keyboard navigation uses vim-style bindings (j/k, enter, s/esc, /) with
// contextual help displayed via charmbracelet/bubbles/help; ctrl+c aborts the build.
package ui
