package scoreboard

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/appengine-ltd/warpctx/internal/inventory"
)

// DefaultLateMarker starts the sidebar date row during late winter.
const DefaultLateMarker = "Late Winter"

// DefaultObjective is the sidebar objective the target mode shows.
const DefaultObjective = "SBScoreboard"

var (
	ErrNoBoard     = errors.New("no scoreboard")
	ErrNoSidebar   = errors.New("no sidebar objective")
	ErrNoObjective = errors.New("objective not on scoreboard")
)

// LateScan tracks whether the sidebar date says it is late winter. The last
// successful answer is kept when a refresh fails.
type LateScan struct {
	marker    string
	objective string
	logger    *slog.Logger

	late    bool
	lastErr error
}

// NewLateScan reads the rows of the named objective, wherever it is displayed.
func NewLateScan(marker, objective string, logger *slog.Logger) *LateScan {
	if marker == "" {
		marker = DefaultLateMarker
	}
	if objective == "" {
		objective = DefaultObjective
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LateScan{marker: marker, objective: objective, logger: logger}
}

// Scan checks rows highest score first and stops at the first row whose team
// prefix starts with the marker.
func (s *LateScan) Scan(scores []Score, teams TeamLookup) bool {
	if teams == nil {
		return false
	}
	for _, score := range SortScores(scores) {
		team, ok := teams.Team(score.Player)
		if !ok {
			continue
		}
		prefix := strings.TrimSpace(inventory.StripFormatting(team.Prefix))
		if strings.HasPrefix(prefix, s.marker) {
			return true
		}
	}
	return false
}

// Refresh rescans board and returns the cached answer. ok is false when the
// board could not be read; the failure is logged and the previous answer
// stays.
func (s *LateScan) Refresh(board Board) (late bool, ok bool) {
	if err := s.refresh(board); err != nil {
		s.lastErr = err
		s.logger.Warn("Failed to check scoreboard for late winter", "error", err)
		return s.late, false
	}
	s.lastErr = nil
	return s.late, true
}

func (s *LateScan) refresh(board Board) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanning sidebar: %v", r)
		}
	}()

	if board == nil {
		return ErrNoBoard
	}
	if !board.HasObjective(s.objective) {
		return fmt.Errorf("%w: %q", ErrNoObjective, s.objective)
	}
	scores, err := board.Scores(s.objective)
	if err != nil {
		return fmt.Errorf("reading scores for %q: %w", s.objective, err)
	}
	s.late = s.Scan(scores, board)
	return nil
}

func (s *LateScan) Late() bool { return s.late }

// Err returns the failure from the last Refresh, if any.
func (s *LateScan) Err() error { return s.lastErr }

// Season is the in-game calendar season read from the sidebar date row.
// Stage is "Early", "Late" or empty.
type Season struct {
	Stage string `json:"stage,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (s Season) Known() bool { return s.Name != "" }

func (s Season) LateWinter() bool { return s.Stage == "Late" && s.Name == "Winter" }

func (s Season) String() string {
	switch {
	case s.Name == "":
		return "unknown"
	case s.Stage == "":
		return s.Name
	default:
		return s.Stage + " " + s.Name
	}
}

var seasonRE = regexp.MustCompile(`^(?:(Late|Early) ?)?([a-zA-Z]+) \d{1,2}.*$`)

// ParseSeason reads a date row such as "Late Winter 12th".
func ParseSeason(line string) (Season, bool) {
	m := seasonRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Season{}, false
	}
	return Season{Stage: m[1], Name: m[2]}, true
}

// SeasonCheck tracks the season shown on the sidebar.
type SeasonCheck struct {
	logger  *slog.Logger
	season  Season
	lastErr error
}

func NewSeasonCheck(logger *slog.Logger) *SeasonCheck {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeasonCheck{logger: logger}
}

// Refresh reads the sidebar, highest row first, and keeps the first season it
// parses. A readable sidebar without a date row clears the season. On a read
// failure the previous season is kept and ok is false.
func (c *SeasonCheck) Refresh(board Board) (season Season, ok bool) {
	rows, err := Sidebar(board)
	if err != nil {
		c.lastErr = err
		c.logger.Warn("Failed to check scoreboard season", "error", err)
		return c.season, false
	}
	c.lastErr = nil
	c.season = Season{}
	for _, row := range rows {
		if parsed, ok := ParseSeason(row.Text); ok {
			c.season = parsed
			break
		}
	}
	return c.season, true
}

func (c *SeasonCheck) Season() Season { return c.season }

func (c *SeasonCheck) Err() error { return c.lastErr }
