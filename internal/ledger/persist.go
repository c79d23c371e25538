package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/storage"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

// EncodeRecords serializes records for the timeRecords key. A nil slice
// encodes as an empty array.
func EncodeRecords(records []model.WorkRecord) (string, error) {
	if records == nil {
		records = []model.WorkRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}
	return string(data), nil
}

// DecodeRecords parses the timeRecords value and checks every record's
// fields and the uniqueness of ids. Unknown JSON fields are ignored.
func DecodeRecords(s string) ([]model.WorkRecord, error) {
	var records []model.WorkRecord
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCorruptState, model.KeyRecords, err)
	}
	seen := make(map[int64]bool, len(records))
	for i, r := range records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate record id %d", ErrCorruptState, r.ID)
		}
		seen[r.ID] = true
		if err := checkRecord(r); err != nil {
			return nil, fmt.Errorf("%w: record %d (index %d): %v", ErrCorruptState, r.ID, i, err)
		}
	}
	return records, nil
}

func checkRecord(r model.WorkRecord) error {
	if _, err := time.Parse(timecalc.DateLayout, r.Date); err != nil {
		return fmt.Errorf("bad date %q", r.Date)
	}
	if _, err := timecalc.ParseClock(r.Date, r.StartTime, time.UTC); err != nil {
		return fmt.Errorf("bad start time %q", r.StartTime)
	}
	if _, err := timecalc.ParseClock(r.Date, r.EndTime, time.UTC); err != nil {
		return fmt.Errorf("bad end time %q", r.EndTime)
	}
	if _, err := timecalc.ParseDurationMinutes(r.Duration); err != nil {
		return err
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		return fmt.Errorf("negative break %d", *r.BreakMinutes)
	}
	return nil
}

// loadState rehydrates the ledger state from s. Missing keys mean no prior
// state. The session start is converted to loc.
func loadState(s storage.Store, loc *time.Location) (state, error) {
	var st state

	raw, ok, err := s.Get(model.KeyRecords)
	if err != nil {
		return state{}, fmt.Errorf("loading %s: %w", model.KeyRecords, err)
	}
	if ok {
		if st.records, err = DecodeRecords(raw); err != nil {
			return state{}, err
		}
	}

	raw, ok, err = s.Get(model.KeyIsWorking)
	if err != nil {
		return state{}, fmt.Errorf("loading %s: %w", model.KeyIsWorking, err)
	}
	if ok {
		if st.working, err = strconv.ParseBool(raw); err != nil {
			return state{}, fmt.Errorf("%w: %s = %q", ErrCorruptState, model.KeyIsWorking, raw)
		}
	}

	raw, ok, err = s.Get(model.KeyStartTime)
	if err != nil {
		return state{}, fmt.Errorf("loading %s: %w", model.KeyStartTime, err)
	}
	switch {
	case st.working && !ok:
		return state{}, fmt.Errorf("%w: working without a start time", ErrCorruptState)
	case st.working:
		var start time.Time
		if err := json.Unmarshal([]byte(raw), &start); err != nil {
			return state{}, fmt.Errorf("%w: %s = %q: %v", ErrCorruptState, model.KeyStartTime, raw, err)
		}
		st.start = start.In(loc)
	}
	// A start time left behind while not working is stale and is dropped on
	// the next flush.
	return st, nil
}

// changes returns the writes that persist st. isWorking and startTime are
// always part of the same batch.
func (st state) changes() ([]storage.Change, error) {
	records, err := EncodeRecords(st.records)
	if err != nil {
		return nil, err
	}
	out := []storage.Change{
		{Key: model.KeyRecords, Value: records},
		{Key: model.KeyIsWorking, Value: strconv.FormatBool(st.working)},
	}
	if !st.working {
		return append(out, storage.Change{Key: model.KeyStartTime, Remove: true}), nil
	}
	start, err := json.Marshal(st.start)
	if err != nil {
		return nil, fmt.Errorf("encoding start time: %w", err)
	}
	return append(out, storage.Change{Key: model.KeyStartTime, Value: string(start)}), nil
}
