package dice

import (
	"encoding/json"
	"sync"
	"time"
)

// HistoryLimit is the number of resolved rolls retained by a History.
const HistoryLimit = 20

// Kind identifies what a recorded roll was resolved for.
type Kind string

const (
	KindSkillCheck Kind = "skill_check"
	KindAttack     Kind = "attack"
	KindDamage     Kind = "damage"
	KindExpression Kind = "expression"
)

// Record is one resolved roll kept for audit and display.
type Record struct {
	Kind       Kind      `json:"kind"`
	Label      string    `json:"label"`
	Rolls      []int     `json:"rolls"`
	Modifier   int       `json:"modifier"`
	Total      int       `json:"total"`
	Difficulty int       `json:"difficulty,omitempty"`
	Success    bool      `json:"success,omitempty"`
	At         time.Time `json:"at"`
}

// History is a bounded FIFO of resolved rolls; the oldest record is evicted
// first once Limit is reached. The zero value holds HistoryLimit records.
type History struct {
	mu      sync.Mutex
	limit   int
	records []Record
}

// NewHistory returns a History retaining at most limit records.
// A limit <= 0 selects HistoryLimit.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) capacity() int {
	if h.limit <= 0 {
		return HistoryLimit
	}
	return h.limit
}

// Push appends rec, evicting the oldest record when full.
//
// Postcondition: h.Len() <= capacity.
func (h *History) Push(rec Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	if over := len(h.records) - h.capacity(); over > 0 {
		h.records = append([]Record(nil), h.records[over:]...)
	}
}

// Records returns a copy of the retained records, oldest first.
func (h *History) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of retained records.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// MarshalJSON encodes the retained records as a JSON array.
func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Records())
}

// UnmarshalJSON replaces the retained records, keeping only the newest
// capacity entries.
func (h *History) UnmarshalJSON(data []byte) error {
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if over := len(recs) - h.capacity(); over > 0 {
		recs = recs[over:]
	}
	h.records = recs
	return nil
}
