package scoreboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidebar(rows ...[3]string) *StaticBoard {
	b := &StaticBoard{Sidebar: "SBScoreboard", Objectives: []string{"SBScoreboard"}}
	for i, r := range rows {
		// Later rows get lower scores so rows read top to bottom.
		b.AddRow(r[0], len(rows)-i, r[1], r[2])
	}
	return b
}

type brokenBoard struct {
	StaticBoard
	err   error
	panic bool
}

func (b *brokenBoard) Scores(string) ([]Score, error) {
	if b.panic {
		panic("world not loaded")
	}
	return nil, b.err
}

func TestLateScanHighestFirstFirstMatchWins(t *testing.T) {
	board := sidebar(
		[3]string{"#1", "§fLate Winter ", "12th"},
		[3]string{"#2", "Early Spring ", "1st"},
	)
	s := NewLateScan("", "", nil)
	assert.True(t, s.Scan(board.Rows, board))

	// Same rows, but the spring row now sorts first.
	board.Rows[1].Points = 10
	board.Teams["#2"] = Team{Prefix: "Late Winterish"}
	assert.True(t, s.Scan(board.Rows, board), "prefix match is enough")

	plain := sidebar([3]string{"#1", "Summer 4th", ""})
	assert.False(t, s.Scan(plain.Rows, plain))
}

func TestLateScanRefreshKeepsCachedValueOnFailure(t *testing.T) {
	s := NewLateScan("", "", nil)
	late, ok := s.Refresh(sidebar([3]string{"#1", " Late Winter 3rd", ""}))
	require.True(t, ok)
	require.True(t, late)

	broken := &brokenBoard{StaticBoard: *sidebar(), err: errors.New("boom")}
	late, ok = s.Refresh(broken)
	assert.False(t, ok)
	assert.True(t, late)
	assert.Error(t, s.Err())

	broken.panic = true
	assert.NotPanics(t, func() {
		late, ok = s.Refresh(broken)
	})
	assert.False(t, ok)
	assert.True(t, late)

	late, ok = s.Refresh(nil)
	assert.False(t, ok)
	assert.True(t, late)
	assert.ErrorIs(t, s.Err(), ErrNoBoard)

	late, ok = s.Refresh(sidebar([3]string{"#1", "Early Spring 1st", ""}))
	assert.True(t, ok)
	assert.False(t, late)
	assert.NoError(t, s.Err())
}

func TestParseSeason(t *testing.T) {
	tests := []struct {
		line string
		want Season
		ok   bool
	}{
		{line: "Late Winter 12th", want: Season{Stage: "Late", Name: "Winter"}, ok: true},
		{line: "Early Spring 1st", want: Season{Stage: "Early", Name: "Spring"}, ok: true},
		{line: "Summer 27th", want: Season{Name: "Summer"}, ok: true},
		{line: "  Autumn 3rd ", want: Season{Name: "Autumn"}, ok: true},
		{line: "Purse: 1,000", ok: false},
		{line: "www.hypixel.net", ok: false},
	}
	for _, tc := range tests {
		got, ok := ParseSeason(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestSeasonCheckRefresh(t *testing.T) {
	c := NewSeasonCheck(nil)
	board := sidebar(
		[3]string{"#1", "§707/04/24", ""},
		[3]string{"#2", " Late Winter ", "12th"},
		[3]string{"#3", " Summer 3rd", ""},
	)

	season, ok := c.Refresh(board)
	require.True(t, ok)
	assert.Equal(t, Season{Stage: "Late", Name: "Winter"}, season)
	assert.True(t, season.LateWinter())
	assert.Equal(t, "Late Winter", season.String())

	_, ok = c.Refresh(&brokenBoard{panic: true, StaticBoard: *board})
	assert.False(t, ok)
	assert.Equal(t, season, c.Season(), "failure keeps previous season")

	season, ok = c.Refresh(sidebar([3]string{"#1", "Objective", ""}))
	assert.True(t, ok)
	assert.False(t, season.Known(), "no date row clears the season")
}

func TestStaticBoardSidebarOnly(t *testing.T) {
	b := sidebar()
	_, ok := b.ObjectiveInDisplaySlot(0)
	assert.False(t, ok)
	assert.True(t, b.HasObjective("SBScoreboard"))
	assert.False(t, b.HasObjective("Other"))

	var nilBoard *StaticBoard
	assert.False(t, nilBoard.HasObjective("SBScoreboard"))
}

func TestSortScoresBreaksTiesByNameAscending(t *testing.T) {
	got := SortScores([]Score{{"b", 5}, {"A", 5}, {"c", 9}, {"a2", 5}})
	assert.Equal(t, []Score{{"c", 9}, {"A", 5}, {"a2", 5}, {"b", 5}}, got)
}

func TestLateScanTiedRowsReadInSidebarOrder(t *testing.T) {
	board := &StaticBoard{Sidebar: "SBScoreboard"}
	board.AddRow("b", 5, "Late Winterfell", "")
	board.AddRow("a", 5, "Late Winter ", "2nd")

	var seen []string
	teams := lookupFunc(func(player string) (Team, bool) {
		seen = append(seen, player)
		return board.Team(player)
	})
	assert.True(t, NewLateScan("", "", nil).Scan(board.Rows, teams))
	assert.Equal(t, []string{"a"}, seen, "stops at the first row in display order")
}

type lookupFunc func(string) (Team, bool)

func (f lookupFunc) Team(player string) (Team, bool) { return f(player) }

func TestLateScanWithoutTeams(t *testing.T) {
	s := NewLateScan("", "", nil)
	assert.NotPanics(t, func() {
		assert.False(t, s.Scan([]Score{{"a", 1}}, nil))
	})
}

func TestLateScanReadsObjectiveByName(t *testing.T) {
	// The objective exists but another one holds the sidebar slot.
	board := &StaticBoard{Sidebar: "Lobby", Objectives: []string{"SBScoreboard"}}
	board.AddRow("a", 1, " Late Winter ", "4th")

	s := NewLateScan("", "SBScoreboard", nil)
	late, ok := s.Refresh(board)
	require.True(t, ok)
	assert.True(t, late)

	late, ok = NewLateScan("", "Other", nil).Refresh(board)
	assert.False(t, ok)
	assert.False(t, late)
}
