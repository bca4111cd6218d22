package model

// RegisterRequest is the /register body. Binding tags drive validation; the
// handler aggregates violations into a message list.
type RegisterRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	CampusID    string `json:"campusId" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=Student Faculty Staff"`
}
