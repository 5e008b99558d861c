package service

import (
	"context"

	"github.com/okian/matchboard/internal/domain/model"
)

// highConfidence marks rows the pipeline highlights.
const highConfidence = 80

// PipelineRow is a match joined with both attendees.
type PipelineRow struct {
	model.Match
	Source         model.Attendee `json:"source"`
	Target         model.Attendee `json:"target"`
	HighConfidence bool           `json:"highConfidence"`
}

// PipelineQuery filters the pipeline. A zero Limit uses the configured
// default; a nil Status keeps every stage.
type PipelineQuery struct {
	Limit  int
	Status *model.Status
}

// Pipeline lists matches in dataset order with their attendees. Rows whose
// attendees are missing are skipped.
func (s *Service) Pipeline(_ context.Context, q PipelineQuery) ([]PipelineRow, int, error) {
	st, err := s.current()
	if err != nil {
		return nil, 0, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = s.pipelineLimit
	}

	rows := make([]PipelineRow, 0, limit)
	total := 0
	st.View(func(ds *model.Dataset) {
		for i := range ds.Matches {
			m := &ds.Matches[i]
			if q.Status != nil && m.Status != *q.Status {
				continue
			}
			total++
			if len(rows) == limit {
				continue
			}
			row, ok := join(st, m.Clone())
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	})
	return rows, total, nil
}

func joinRow(st *Store, m model.Match) (PipelineRow, bool) {
	var (
		row PipelineRow
		ok  bool
	)
	st.View(func(*model.Dataset) { row, ok = join(st, m) })
	return row, ok
}

// join must be called with the store's read lock held.
func join(st *Store, m model.Match) (PipelineRow, bool) {
	src, ok := st.attendeeLocked(m.SourceID)
	if !ok {
		return PipelineRow{}, false
	}
	dst, ok := st.attendeeLocked(m.TargetID)
	if !ok {
		return PipelineRow{}, false
	}
	return PipelineRow{
		Match:          m,
		Source:         src,
		Target:         dst,
		HighConfidence: m.ConfidenceScore > highConfidence,
	}, true
}
