package model

// Stop is one transit stop from the stops CSV. The stops list carries no
// natural-key dedup; every upload appends its rows, so re-uploading the
// same file accumulates duplicates.
type Stop struct {
	ID       int64  `json:"id" db:"id"`
	SrNo     int    `json:"srno" db:"srno"`
	Code     string `json:"code" db:"code"`
	StopName string `json:"stopname" db:"stopname"`
}
