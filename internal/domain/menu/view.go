package menu

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Sort toggle labels
const (
	SortLabelAscending  = "Sorted A-Z"
	SortLabelDescending = "Sorted Z-A"
)

// ViewState is the ephemeral UI state that shapes the visible list.
// The zero value shows everything sorted descending.
type ViewState struct {
	SearchPhrase  string
	SortAscending bool
}

// SortLabel describes the current sort direction
func (s ViewState) SortLabel() string {
	if s.SortAscending {
		return SortLabelAscending
	}
	return SortLabelDescending
}

// Toggled returns the state with the sort direction flipped
func (s ViewState) Toggled() ViewState {
	s.SortAscending = !s.SortAscending
	return s
}

// Derive computes the visible list: case-insensitive substring filter on name,
// then a stable sort by name. items is never modified.
func Derive(items []MenuItem, state ViewState) []MenuItem {
	visible := make([]MenuItem, 0, len(items))
	if state.SearchPhrase == "" {
		visible = append(visible, items...)
	} else {
		fold := cases.Fold()
		phrase := fold.String(state.SearchPhrase)
		for _, item := range items {
			if strings.Contains(fold.String(item.Name), phrase) {
				visible = append(visible, item)
			}
		}
	}

	slices.SortStableFunc(visible, func(a, b MenuItem) int {
		if state.SortAscending {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(b.Name, a.Name)
	})
	return visible
}
