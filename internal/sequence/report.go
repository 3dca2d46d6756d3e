package sequence

import (
	"time"

	"github.com/rs/zerolog"
)

// ItemKind distinguishes preamble steps from checks in a report.
type ItemKind string

const (
	KindStep  ItemKind = "step"
	KindCheck ItemKind = "check"
)

// OutcomeDone is the outcome of a preamble step that succeeded.
const OutcomeDone = "done"

// ItemResult is the result of one step or check.
type ItemResult struct {
	Kind    ItemKind `json:"kind"`
	Label   string   `json:"label"`
	Outcome string   `json:"outcome"`
	Err     string   `json:"error,omitempty"`
	// Continued is set when the item failed and the run went on.
	Continued bool `json:"continued,omitempty"`
}

// Report summarizes a sequence run.
type Report struct {
	Sequence string       `json:"sequence"`
	Label    string       `json:"label"`
	Items    []ItemResult `json:"items"`
	Aborted  bool         `json:"aborted"`
}

// Skipped counts failed items the run continued past.
func (r Report) Skipped() int {
	n := 0
	for _, it := range r.Items {
		if it.Continued {
			n++
		}
	}
	return n
}

// Completed reports whether every item ran, possibly with skips.
func (r Report) Completed() bool {
	return !r.Aborted
}

func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
}

func (r *Report) abort(err error, logger zerolog.Logger, started time.Time) (Report, error) {
	r.Aborted = true
	logger.Warn().Err(err).Int("items", len(r.Items)).Dur("duration", time.Since(started)).Msg("sequence aborted")
	return *r, err
}
