package feed

import (
	"strconv"

	"github.com/pakana/projector/kvdb"
)

// Summary records what projecting one ledger did.
type Summary struct {
	Ledger      uint32 `json:"ledger"`
	ClosedAt    string `json:"closed_at"`
	Total       int    `json:"total"`
	Applied     int    `json:"applied"`
	Skipped     int    `json:"skipped"`
	Mutations   int    `json:"mutations"`
	Unsupported int    `json:"unsupported_operations"`
}

var summaryFields = []string{"total", "applied", "skipped", "mutations", "unsupported"}

// SummaryKey is ^Projector("ledger",seq).
func SummaryKey(seq uint32) kvdb.Key {
	return kvdb.NewKey(GlobalProjector, "ledger", seqString(seq))
}

func (s *Summary) fields() []*int {
	return []*int{&s.Total, &s.Applied, &s.Skipped, &s.Mutations, &s.Unsupported}
}

// WriteSummary stores s under its ledger.
func WriteSummary(tx kvdb.Tx, s *Summary) error {
	key := SummaryKey(s.Ledger)
	for i, f := range s.fields() {
		if err := tx.Set(key.Child(summaryFields[i]), strconv.Itoa(*f)); err != nil {
			return err
		}
	}
	return nil
}

// ReadSummary reads the projection summary of seq.
func ReadSummary(r kvdb.Reader, seq uint32) (*Summary, error) {
	key := SummaryKey(seq)
	exists, err := r.HasTree(key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLedgerNotFound
	}
	s := &Summary{Ledger: seq}
	for i, f := range s.fields() {
		n, err := kvdb.GetInt64(r, key.Child(summaryFields[i]))
		if err != nil {
			return nil, err
		}
		*f = int(n)
	}
	if s.ClosedAt, _, err = r.Get(LedgerKey(seq).Child("closed_at")); err != nil {
		return nil, err
	}
	return s, nil
}
