package world

// AssaultTickRecord is one row of the assault ledger: a single tactical tick
// of an engaged assault, or a note from another subsystem.
type AssaultTickRecord struct {
	Seq               int     `json:"seq"`
	Tick              int     `json:"tick"`
	TargetedSector    string  `json:"targeted_sector"`
	TargetWeight      float64 `json:"target_weight"`
	AssaultStrength   float64 `json:"assault_strength"`
	DefenseMitigation float64 `json:"defense_mitigation"`
	BuildingDestroyed string  `json:"building_destroyed,omitempty"`
	FailureTriggered  bool    `json:"failure_triggered,omitempty"`
	Note              string  `json:"note,omitempty"`
}

// AssaultLedger is an append-only ring buffer. Seq keeps counting across
// evictions so consumers can drain incrementally.
type AssaultLedger struct {
	Cap     int
	Rows    []AssaultTickRecord
	NextSeq int
}

func NewAssaultLedger(capacity int) *AssaultLedger {
	if capacity <= 0 {
		capacity = 2000
	}
	return &AssaultLedger{Cap: capacity, NextSeq: 1}
}

func (l *AssaultLedger) Append(r AssaultTickRecord) {
	r.Seq = l.NextSeq
	l.NextSeq++
	l.Rows = append(l.Rows, r)
	if over := len(l.Rows) - l.Cap; over > 0 {
		l.Rows = append([]AssaultTickRecord(nil), l.Rows[over:]...)
	}
}

func (l *AssaultLedger) Len() int { return len(l.Rows) }

// Since returns rows with Seq > seq, oldest first.
func (l *AssaultLedger) Since(seq int) []AssaultTickRecord {
	for i, r := range l.Rows {
		if r.Seq > seq {
			return append([]AssaultTickRecord(nil), l.Rows[i:]...)
		}
	}
	return nil
}

// DrainLedger returns rows appended after seq together with the new cursor.
func DrainLedger(s *GameState, seq int) ([]AssaultTickRecord, int) {
	rows := s.Ledger.Since(seq)
	if len(rows) == 0 {
		return nil, seq
	}
	return rows, rows[len(rows)-1].Seq
}
