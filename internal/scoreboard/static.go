package scoreboard

// StaticBoard is a Board held in memory, rebuilt from recorded sidebar
// snapshots during replay.
type StaticBoard struct {
	Objectives []string        `cbor:"objectives,omitempty" json:"objectives,omitempty"`
	Sidebar    string          `cbor:"sidebar,omitempty" json:"sidebar,omitempty"`
	Rows       []Score         `cbor:"rows,omitempty" json:"rows,omitempty"`
	Teams      map[string]Team `cbor:"teams,omitempty" json:"teams,omitempty"`
}

func (b *StaticBoard) HasObjective(name string) bool {
	if b == nil {
		return false
	}
	for _, o := range b.Objectives {
		if o == name {
			return true
		}
	}
	return b.Sidebar != "" && b.Sidebar == name
}

func (b *StaticBoard) ObjectiveInDisplaySlot(slot int) (string, bool) {
	if b == nil || slot != SidebarSlot || b.Sidebar == "" {
		return "", false
	}
	return b.Sidebar, true
}

func (b *StaticBoard) Scores(objective string) ([]Score, error) {
	if !b.HasObjective(objective) {
		return nil, nil
	}
	return b.Rows, nil
}

func (b *StaticBoard) Team(player string) (Team, bool) {
	if b == nil {
		return Team{}, false
	}
	t, ok := b.Teams[player]
	return t, ok
}

// AddRow appends a sidebar row whose visible text is prefix+suffix.
func (b *StaticBoard) AddRow(player string, points int, prefix, suffix string) {
	if b.Teams == nil {
		b.Teams = make(map[string]Team)
	}
	b.Rows = append(b.Rows, Score{Player: player, Points: points})
	b.Teams[player] = Team{Prefix: prefix, Suffix: suffix}
}
