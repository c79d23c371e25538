// Package ledger owns the work records, the open session and the arithmetic
// derived from them. Every mutation is flushed to a storage.Store before it
// becomes visible; a failed flush leaves the in-memory state untouched.
//
// A Ledger is not safe for concurrent use.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kintai-rec/kintai/internal/clock"
	"github.com/kintai-rec/kintai/internal/model"
	"github.com/kintai-rec/kintai/internal/storage"
	"github.com/kintai-rec/kintai/internal/timecalc"
)

// DefaultBreakMinutes is the break applied when nothing is configured.
const DefaultBreakMinutes = 60

// EditInput holds the raw form values of a record edit.
type EditInput struct {
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	BreakMinutes string `json:"breakMinutes"`
}

type state struct {
	records []model.WorkRecord
	working bool
	start   time.Time
}

func (st state) clone() state {
	st.records = cloneRecords(st.records)
	return st
}

// Ledger is the time-record model.
type Ledger struct {
	store        storage.Store
	clock        clock.Clock
	defaultBreak int

	st     state
	lastID int64

	editing    bool
	editID     int64
	selected   bool
	selectedID int64
}

// New rehydrates a Ledger from store. Malformed persisted data fails with
// ErrCorruptState instead of producing a half-loaded ledger.
func New(store storage.Store, clk clock.Clock, defaultBreak int) (*Ledger, error) {
	if defaultBreak < 0 {
		return nil, fmt.Errorf("default break %d: %w", defaultBreak, ErrInvalidBreak)
	}
	st, err := loadState(store, clk.Now().Location())
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		store:        store,
		clock:        clk,
		defaultBreak: defaultBreak,
		st:           st,
	}
	for _, r := range st.records {
		l.lastID = max(l.lastID, r.ID)
	}
	return l, nil
}

// commit persists next and, only on success, makes it the current state.
func (l *Ledger) commit(next state) error {
	changes, err := next.changes()
	if err != nil {
		return err
	}
	if err := storage.Apply(l.store, changes); err != nil {
		return fmt.Errorf("flushing ledger: %w", err)
	}
	l.st = next
	return nil
}

// ClockIn opens a session at the current time.
func (l *Ledger) ClockIn() error {
	if l.st.working {
		return fmt.Errorf("clock in: already working since %s: %w",
			l.st.start.Format(timecalc.ClockLayout), ErrInvalidState)
	}
	next := l.st.clone()
	next.working = true
	next.start = l.clock.Now()
	return l.commit(next)
}

// ClockOut closes the open session and appends its record. A session that
// crosses midnight is stored as one record per calendar day; the default
// break is charged to the first of them. The new records are returned.
// A session with no whole second on any day fails with ErrInvalidRange and
// stays open.
func (l *Ledger) ClockOut() ([]model.WorkRecord, error) {
	if !l.st.working {
		return nil, fmt.Errorf("clock out: not working: %w", ErrInvalidState)
	}
	end := l.clock.Now()
	if end.Before(l.st.start) {
		return nil, fmt.Errorf("clock out at %s before start %s: %w",
			end.Format(time.RFC3339), l.st.start.Format(time.RFC3339), ErrInvalidRange)
	}
	segs := splitByDay(l.st.start, end)
	if len(segs) == 0 {
		return nil, fmt.Errorf("clock out at %s: session started %s is shorter than a second: %w",
			end.Format(timecalc.ClockLayout), l.st.start.Format(timecalc.ClockLayout), ErrInvalidRange)
	}

	next := l.st.clone()
	lastID := l.lastID
	var added []model.WorkRecord
	for i, seg := range segs {
		dur, err := timecalc.ComputeDuration(seg[0], seg[1])
		if err != nil {
			return nil, fmt.Errorf("clock out: %w", err)
		}
		brk := l.defaultBreak
		if i > 0 {
			brk = 0
		}
		lastID = timecalc.NextID(end, lastID)
		added = append(added, model.WorkRecord{
			ID:           lastID,
			Date:         seg[1].Format(timecalc.DateLayout),
			StartTime:    seg[0].Format(timecalc.ClockLayout),
			EndTime:      seg[1].Format(timecalc.ClockLayout),
			Duration:     dur,
			BreakMinutes: model.Minutes(brk),
		})
	}
	next.records = append(next.records, added...)
	next.working = false
	next.start = time.Time{}

	if err := l.commit(next); err != nil {
		return nil, err
	}
	l.lastID = lastID
	return cloneRecords(added), nil
}

// splitByDay cuts [start, end] at every midnight. Segments that would be
// empty at second resolution are dropped, so the result is empty when no
// segment has an end after its start.
func splitByDay(start, end time.Time) [][2]time.Time {
	var segs [][2]time.Time
	for !timecalc.SameDay(start, end) {
		segEnd := timecalc.EndOfDay(start)
		if segEnd.Before(start) {
			segEnd = start
		}
		segs = append(segs, [2]time.Time{start, segEnd})
		start = timecalc.StartOfDay(start.AddDate(0, 0, 1))
	}
	segs = append(segs, [2]time.Time{start, end})

	kept := segs[:0]
	for _, s := range segs {
		if s[0].Truncate(time.Second).Equal(s[1].Truncate(time.Second)) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

// EditRecord validates in and replaces the date, times and break of the
// record with the given id, recomputing its duration. On error nothing
// changes.
func (l *Ledger) EditRecord(id int64, in EditInput) error {
	idx := l.index(id)
	if idx < 0 {
		return fmt.Errorf("edit record %d: %w", id, ErrNotFound)
	}

	loc := l.clock.Now().Location()
	start, err := timecalc.ParseClock(in.Date, in.StartTime, loc)
	if err != nil {
		return fmt.Errorf("edit record %d: start: %v: %w", id, err, ErrInvalidRange)
	}
	end, err := timecalc.ParseClock(in.Date, in.EndTime, loc)
	if err != nil {
		return fmt.Errorf("edit record %d: end: %v: %w", id, err, ErrInvalidRange)
	}
	if !end.After(start) {
		return fmt.Errorf("edit record %d: %s–%s: %w", id, in.StartTime, in.EndTime, ErrInvalidRange)
	}

	brk, err := ParseBreak(in.BreakMinutes)
	if err != nil {
		return fmt.Errorf("edit record %d: %w", id, err)
	}

	dur, err := timecalc.ComputeDuration(start, end)
	if err != nil {
		return fmt.Errorf("edit record %d: %w", id, err)
	}

	next := l.st.clone()
	next.records[idx] = model.WorkRecord{
		ID:           id,
		Date:         start.Format(timecalc.DateLayout),
		StartTime:    start.Format(timecalc.ClockLayout),
		EndTime:      end.Format(timecalc.ClockLayout),
		Duration:     dur,
		BreakMinutes: model.Minutes(brk),
	}
	if err := l.commit(next); err != nil {
		return err
	}
	l.editing = false
	return nil
}

// ParseBreak parses a break-minutes form value.
func ParseBreak(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("break %q: %w", s, ErrInvalidBreak)
	}
	if n < 0 {
		return 0, fmt.Errorf("break %d: %w", n, ErrInvalidBreak)
	}
	return n, nil
}

// DeleteRecord removes the record with the given id. An unknown id is a
// no-op and does not touch the store.
func (l *Ledger) DeleteRecord(id int64) error {
	idx := l.index(id)
	if idx < 0 {
		return nil
	}
	next := l.st.clone()
	next.records = append(next.records[:idx], next.records[idx+1:]...)
	if err := l.commit(next); err != nil {
		return err
	}
	if l.editing && l.editID == id {
		l.editing = false
	}
	if l.selected && l.selectedID == id {
		l.selected = false
	}
	return nil
}

// BeginEdit starts editing the record with the given id and returns its
// current values as form input. A record without an explicit break is
// prefilled with the default.
func (l *Ledger) BeginEdit(id int64) (EditInput, error) {
	idx := l.index(id)
	if idx < 0 {
		return EditInput{}, fmt.Errorf("edit record %d: %w", id, ErrNotFound)
	}
	r := l.st.records[idx]
	l.editing = true
	l.editID = id
	return EditInput{
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakMinutes: strconv.Itoa(l.BreakMinutes(r)),
	}, nil
}

// SaveEdit applies in to the record being edited.
func (l *Ledger) SaveEdit(in EditInput) error {
	if !l.editing {
		return fmt.Errorf("save edit: no record is being edited: %w", ErrInvalidState)
	}
	return l.EditRecord(l.editID, in)
}

// CancelEdit drops the edit in progress, if any.
func (l *Ledger) CancelEdit() {
	l.editing = false
}

// Editing returns the id of the record being edited.
func (l *Ledger) Editing() (int64, bool) {
	return l.editID, l.editing
}

// Select toggles the selection of the record with the given id.
func (l *Ledger) Select(id int64) {
	if l.selected && l.selectedID == id {
		l.selected = false
		return
	}
	l.selected = true
	l.selectedID = id
}

// Selected returns the id of the selected record.
func (l *Ledger) Selected() (int64, bool) {
	return l.selectedID, l.selected
}

// Records returns a copy of the records in creation order.
func (l *Ledger) Records() []model.WorkRecord {
	return cloneRecords(l.st.records)
}

// Record returns the record with the given id.
func (l *Ledger) Record(id int64) (model.WorkRecord, bool) {
	idx := l.index(id)
	if idx < 0 {
		return model.WorkRecord{}, false
	}
	return cloneRecords(l.st.records[idx : idx+1])[0], true
}

// IsWorking reports whether a session is open.
func (l *Ledger) IsWorking() bool {
	return l.st.working
}

// StartTime returns the start of the open session.
func (l *Ledger) StartTime() (time.Time, bool) {
	return l.st.start, l.st.working
}

// Elapsed returns how long the open session has been running, or zero.
func (l *Ledger) Elapsed() time.Duration {
	if !l.st.working {
		return 0
	}
	return max(0, l.clock.Now().Sub(l.st.start))
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// DefaultBreakMinutes returns the configured fallback break.
func (l *Ledger) DefaultBreakMinutes() int {
	return l.defaultBreak
}

// BreakMinutes returns r's break, or the default when r has none.
func (l *Ledger) BreakMinutes(r model.WorkRecord) int {
	return BreakMinutes(r, l.defaultBreak)
}

// NetDuration returns r's gross duration minus its break as HH:MM.
func (l *Ledger) NetDuration(r model.WorkRecord) string {
	return NetDuration(r, l.defaultBreak)
}

// TotalNetDuration returns the summed net time of all records as H:MM.
func (l *Ledger) TotalNetDuration() string {
	return TotalNetDuration(l.st.records, l.defaultBreak)
}

func (l *Ledger) index(id int64) int {
	for i, r := range l.st.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// BreakMinutes returns r's break, or defaultBreak when r has none.
func BreakMinutes(r model.WorkRecord, defaultBreak int) int {
	if r.BreakMinutes == nil {
		return defaultBreak
	}
	return *r.BreakMinutes
}

// NetDuration returns r's gross duration minus its break, clamped at zero,
// as HH:MM.
func NetDuration(r model.WorkRecord, defaultBreak int) string {
	return timecalc.FormatHHMM(timecalc.NetMinutes(r.Duration, BreakMinutes(r, defaultBreak)))
}

// TotalNetDuration sums the net minutes of records and formats them as H:MM.
func TotalNetDuration(records []model.WorkRecord, defaultBreak int) string {
	var total int64
	for _, r := range records {
		total += timecalc.NetMinutes(r.Duration, BreakMinutes(r, defaultBreak))
	}
	return timecalc.FormatTotal(total)
}

func cloneRecords(in []model.WorkRecord) []model.WorkRecord {
	if in == nil {
		return nil
	}
	out := make([]model.WorkRecord, len(in))
	for i, r := range in {
		if r.BreakMinutes != nil {
			r.BreakMinutes = model.Minutes(*r.BreakMinutes)
		}
		out[i] = r
	}
	return out
}
