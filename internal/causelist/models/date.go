package models

import (
	"fmt"
	"time"
)

const (
	// InputDateLayout is what a date input yields.
	InputDateLayout = "2006-01-02"
	// SubmissionDateLayout is what the backend expects in the URL.
	SubmissionDateLayout = "02-01-2006"
)

// CauseDate is a calendar day for a cause list. The zero value is not valid.
type CauseDate struct {
	t time.Time
}

// ParseInputDate parses YYYY-MM-DD. Strings that are not a real calendar day
// (e.g. "2024-02-30", "9999-99-99") are rejected.
func ParseInputDate(s string) (CauseDate, error) {
	return parseDate(s, InputDateLayout, "YYYY-MM-DD")
}

// ParseSubmissionDate parses DD-MM-YYYY.
func ParseSubmissionDate(s string) (CauseDate, error) {
	return parseDate(s, SubmissionDateLayout, "DD-MM-YYYY")
}

func parseDate(s, layout, human string) (CauseDate, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return CauseDate{}, &ValidationError{
			Reason: fmt.Sprintf("invalid date %q, expected %s", s, human),
		}
	}
	return CauseDate{t: t}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) CauseDate {
	y, m, d := t.Date()
	return CauseDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Input formats the date as YYYY-MM-DD.
func (d CauseDate) Input() string {
	return d.t.Format(InputDateLayout)
}

// String formats the date as DD-MM-YYYY, the submission format.
func (d CauseDate) String() string {
	return d.t.Format(SubmissionDateLayout)
}

// IsZero reports whether d was never set.
func (d CauseDate) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the underlying midnight UTC time.
func (d CauseDate) Time() time.Time {
	return d.t
}
