// Package scoreboard reads state from the server's sidebar: whether it is
// late winter in-game and the current season.
package scoreboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/appengine-ltd/warpctx/internal/inventory"
)

// SidebarSlot is the host's display slot index for the sidebar.
const SidebarSlot = 1

// Score is one sidebar row as the host stores it: a fake player name and its
// points. The visible text comes from the player's team.
type Score struct {
	Player string `cbor:"player" json:"player"`
	Points int    `cbor:"points" json:"points"`
}

// Team holds the text drawn around a row's player name.
type Team struct {
	Prefix string `cbor:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix string `cbor:"suffix,omitempty" json:"suffix,omitempty"`
}

// Format returns the row text for name the way the host renders it.
func (t Team) Format(name string) string {
	return t.Prefix + name + t.Suffix
}

// TeamLookup resolves the team a sidebar row belongs to.
type TeamLookup interface {
	Team(player string) (Team, bool)
}

// Board is read access to the host's scoreboard. Implementations may fail or
// panic while the world is loading.
type Board interface {
	TeamLookup
	HasObjective(name string) bool
	ObjectiveInDisplaySlot(slot int) (name string, ok bool)
	Scores(objective string) ([]Score, error)
}

// Row is a sidebar row with its rendered text.
type Row struct {
	Score
	Team Team
	Text string
}

// SortScores orders scores the way the sidebar shows them, highest first.
// Tied rows read by player name ascending, ignoring case.
func SortScores(scores []Score) []Score {
	out := slices.Clone(scores)
	slices.SortStableFunc(out, func(a, b Score) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Player), strings.ToLower(b.Player))
	})
	return out
}

// Sidebar reads the sidebar rows, highest first. A panic inside the board is
// returned as an error.
func Sidebar(board Board) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("reading sidebar: %v", r)
		}
	}()

	if board == nil {
		return nil, ErrNoBoard
	}
	objective, ok := board.ObjectiveInDisplaySlot(SidebarSlot)
	if !ok {
		return nil, ErrNoSidebar
	}
	scores, err := board.Scores(objective)
	if err != nil {
		return nil, fmt.Errorf("reading scores for %q: %w", objective, err)
	}

	sorted := SortScores(scores)
	rows = make([]Row, 0, len(sorted))
	for _, s := range sorted {
		team, _ := board.Team(s.Player)
		rows = append(rows, Row{
			Score: s,
			Team:  team,
			Text:  strings.TrimSpace(inventory.StripFormatting(team.Format(""))),
		})
	}
	return rows, nil
}
