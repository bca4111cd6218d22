package model

import "time"

type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "Faculty"
	RoleStaff   Role = "Staff"
)

// User is a registered account. Email is store-enforced unique; the password
// is kept only as a bcrypt hash.
type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	CampusID     string    `json:"campusId" db:"campus_id"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
