package model

// Keys under which the ledger persists itself in the key-value store.
const (
	KeyRecords   = "timeRecords"
	KeyIsWorking = "isWorking"
	KeyStartTime = "startTime"
)

// WorkRecord represents one completed work session.
type WorkRecord struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	// BreakMinutes is nil when the record carries no explicit break; the
	// ledger's default applies in that case.
	BreakMinutes *int `json:"breakMinutes,omitempty"`
}

// Minutes returns a pointer to m, for filling BreakMinutes.
func Minutes(m int) *int {
	return &m
}
