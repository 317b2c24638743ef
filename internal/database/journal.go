package database

import (
	"context"

	"github.com/nao1215/crawley/internal/model"
)

// RunJournal records the outcomes of a single run.
type RunJournal struct {
	db    *CrawlDB
	runID int64
}

// Journal returns a RunJournal bound to run runID.
func (cdb *CrawlDB) Journal(runID int64) *RunJournal {
	return &RunJournal{db: cdb, runID: runID}
}

// RunID returns the run the journal writes to.
func (j *RunJournal) RunID() int64 {
	return j.runID
}

// RecordOutcome stores out and the number of links found on the page.
// The crawl may be stopping when this is called, so a cancelled ctx does
// not drop the record.
func (j *RunJournal) RecordOutcome(ctx context.Context, out model.Outcome, linksFound int) error {
	return j.db.RecordFetch(context.WithoutCancel(ctx), NewFetchRecord(j.runID, out, linksFound))
}
