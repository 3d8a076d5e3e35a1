package engine

func NewState(p1Name, p2Name string) *State {
	s := &State{
		Turn:       First,
		Phase:      PhasePlacement,
		Log:        []string{},
		TotalCells: TotalCells,
	}
	s.Players[First] = Player{Name: p1Name, Shots: ShotRecord{}}
	s.Players[Second] = Player{Name: p2Name, Shots: ShotRecord{}}
	return s
}

// RecentLog returns a copy of the last n log entries.
func (s *State) RecentLog(n int) []string {
	start := 0
	if len(s.Log) > n {
		start = len(s.Log) - n
	}
	return append([]string{}, s.Log[start:]...)
}

func (s *State) Finished() bool { return s.Phase == PhaseFinished }

// sunkCells is every cell of the ship plus the cell that was fired at,
// in layout order.
func sunkCells(ship []Coord, at Coord) []Coord {
	out := make([]Coord, 0, len(ship)+1)
	seen := false
	for _, c := range ship {
		if c == at {
			seen = true
		}
		out = append(out, c)
	}
	if !seen {
		out = append(out, at)
	}
	return out
}
