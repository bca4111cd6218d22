package model

import "time"

// Student is one row of the campus enrollment sheet. EnrollmentCode is the
// natural key used for duplicate detection during ingestion.
type Student struct {
	ID             int64     `json:"id" db:"id"`
	EnrollmentCode string    `json:"enrollmentCode" db:"enrollment_code"`
	FullName       string    `json:"fullName" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	Department     string    `json:"department" db:"department"`
	Year           string    `json:"year" db:"year"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
