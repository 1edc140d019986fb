// Package reviews implements the customer review board: a persisted, ordered
// list of testimonials with derived statistics and a display projection.
package reviews

import "time"

// DefaultKey is the storage key the board is persisted under.
const DefaultKey = "manaklal_reviews_v1"

const (
	MinRating = 1
	MaxRating = 5

	// Submission limits in runes, matching the form's maxlength attributes.
	MaxNameRunes = 80
	MaxTextRunes = 2000
)

// Record is one submitted testimonial. Name and Text hold the raw,
// unescaped input; they must go through Escape before reaching HTML.
type Record struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	// Time is the submission instant in epoch milliseconds.
	Time int64  `json:"time"`
	ID   string `json:"id,omitempty"`
	Seq  uint64 `json:"seq,omitempty"`
}

// SubmittedAt converts Time to a time.Time in UTC.
func (r Record) SubmittedAt() time.Time {
	return time.UnixMilli(r.Time).UTC()
}

// Valid reports whether the record satisfies the collection invariants.
// Stored records are not re-normalized, so a whitespace name still counts.
func (r Record) Valid() bool {
	return r.Name != "" && r.Text != "" &&
		r.Rating >= MinRating && r.Rating <= MaxRating
}

// Collection is the ordered set of records, oldest first.
type Collection []Record

// Last returns the most recently appended record.
func (c Collection) Last() (Record, bool) {
	if len(c) == 0 {
		return Record{}, false
	}
	return c[len(c)-1], true
}

func (c Collection) maxSeq() uint64 {
	var max uint64
	for _, r := range c {
		if r.Seq > max {
			max = r.Seq
		}
	}
	return max
}
