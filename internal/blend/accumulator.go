package blend

import "github.com/Veraticus/leadflow/internal/model"

// Origin records which stage inserted a record.
type Origin string

// Stages that can insert records.
const (
	OriginLeads     Origin = "leads"
	OriginReferrals Origin = "referrals"
)

// Accumulator holds the canonical records while the merge stages run.
// Each stage receives the accumulator, mutates records in place and
// hands it to the next one.
type Accumulator struct {
	records map[string]*model.Record
	origin  map[string]Origin
	order   []string
	stats   Stats
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		records: make(map[string]*model.Record),
		origin:  make(map[string]Origin),
	}
}

// Lookup returns the record stored for key.
func (a *Accumulator) Lookup(key string) (*model.Record, bool) {
	r, ok := a.records[key]
	return r, ok
}

// Put stores rec under its identity key, replacing any record already
// held for that key. Replaced keys keep their original position.
func (a *Accumulator) Put(rec *model.Record, origin Origin) (replaced bool) {
	key := rec.Key()
	if _, exists := a.records[key]; exists {
		replaced = true
	} else {
		a.order = append(a.order, key)
	}
	a.records[key] = rec
	a.origin[key] = origin
	return replaced
}

// Len returns the number of canonical records.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Origin returns the stage that last inserted the record for key.
func (a *Accumulator) Origin(key string) Origin {
	return a.origin[key]
}

// Stats returns the counters gathered so far.
func (a *Accumulator) Stats() Stats {
	return a.stats
}

// Records returns copies of the canonical records in first-insertion
// order. Provenance stays behind in the accumulator.
func (a *Accumulator) Records() []model.Record {
	out := make([]model.Record, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.records[key])
	}
	return out
}
