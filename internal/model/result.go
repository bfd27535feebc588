package model

type RowStatus string

const (
	RowInserted RowStatus = "inserted"
	RowUpdated  RowStatus = "updated"
	RowNotFound RowStatus = "not_found"
	RowNoImage  RowStatus = "no_image"
	RowErrored  RowStatus = "errored"
)

// ItemError pairs a chunk or row index with the error it produced.
type ItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// RowOutcome lets a caller reconstruct what happened to every input row.
type RowOutcome struct {
	SNo     int       `json:"s_no"`
	Slug    string    `json:"slug,omitempty"`
	Status  RowStatus `json:"status"`
	NoImage bool      `json:"no_image,omitempty"`
	Chunk   int       `json:"chunk"`
	Error   string    `json:"error,omitempty"`
	// Note flags a row whose chunk count did not match what the store reported.
	Note string `json:"note,omitempty"`
}

// BatchResult aggregates one bulk insert run. Errors holds (chunk index,
// error) pairs; chunk indexes are zero-based. Warnings holds chunks the store
// accepted but reported a different insert count for.
type BatchResult struct {
	Total    int          `json:"total"`
	Inserted int          `json:"inserted"`
	NotFound int          `json:"not_found"`
	Errored  int          `json:"errored"`
	NoImage  int          `json:"no_image"`
	Batches  int          `json:"batches"`
	Errors   []ItemError  `json:"errors,omitempty"`
	Warnings []ItemError  `json:"warnings,omitempty"`
	Rows     []RowOutcome `json:"rows"`
}

type UpdateStatus string

const (
	UpdateUpdated  UpdateStatus = "updated"
	UpdateNotFound UpdateStatus = "not_found"
	UpdateFailed   UpdateStatus = "failed"
)

// UpdateOutcome is the result of reconciling one row. Err is set only for
// UpdateFailed.
type UpdateOutcome struct {
	Status     UpdateStatus
	PropertyID string
	Candidates int
	Err        error
}

func Updated(id string) UpdateOutcome { return UpdateOutcome{Status: UpdateUpdated, PropertyID: id, Candidates: 1} }

func NotFound(candidates int) UpdateOutcome {
	return UpdateOutcome{Status: UpdateNotFound, Candidates: candidates}
}

func Failed(err error) UpdateOutcome { return UpdateOutcome{Status: UpdateFailed, Err: err} }

// ReconciliationSummary aggregates one bulk media update run. Errors holds
// (row index, error) pairs; row indexes are zero-based input positions.
type ReconciliationSummary struct {
	Total    int          `json:"total"`
	Updated  int          `json:"updated"`
	NotFound int          `json:"not_found"`
	NoImage  int          `json:"no_image"`
	Errored  int          `json:"errored"`
	Errors   []ItemError  `json:"errors,omitempty"`
	Rows     []RowOutcome `json:"rows"`
}

type PhaseResult struct {
	Phase    string   `json:"phase"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

type SeedResult struct {
	Phases []PhaseResult `json:"phases"`
}

// Inserted returns the inserted count of the named phase.
func (r SeedResult) Inserted(phase string) int {
	for _, p := range r.Phases {
		if p.Phase == phase {
			return p.Inserted
		}
	}
	return 0
}

func (r SeedResult) TotalInserted() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Inserted
	}
	return total
}
