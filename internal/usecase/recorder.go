package usecase

import (
	"time"

	"github.com/tastelens/backend/internal/domain"
)

// Batch job names used when recording item outcomes
const (
	JobIndex      = "index"
	JobClassify   = "classify"
	JobStyleGuide = "styleguide"
)

const (
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Recorder receives operational counters from the services.
// metrics.Metrics satisfies it.
type Recorder interface {
	RecordBatchItem(job, outcome string)
	RecordMatch(err error, elapsed time.Duration)
	RecordTriage(action string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBatchItem(string, string)   {}
func (nopRecorder) RecordMatch(error, time.Duration) {}
func (nopRecorder) RecordTriage(string)              {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// tally accumulates a BatchReport and mirrors every outcome to a Recorder.
// Not safe for concurrent use; callers serialise access.
type tally struct {
	job      string
	recorder Recorder
	report   domain.BatchReport
}

func newTally(job string, recorder Recorder) *tally {
	return &tally{job: job, recorder: recorderOrNop(recorder)}
}

func (t *tally) add(outcome string) {
	switch outcome {
	case outcomeProcessed:
		t.report.Processed++
	case outcomeFailed:
		t.report.Failed++
	case outcomeSkipped:
		t.report.Skipped++
	}
	t.recorder.RecordBatchItem(t.job, outcome)
}
