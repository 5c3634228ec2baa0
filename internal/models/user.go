package models

import "strconv"

// User represents a user record owned by the education backend.
// IsExist is derived from the fetch status code, never from the body.
type User struct {
	UserID     int64  `json:"user_id"`
	IsExist    bool   `json:"-"`
	IsActive   bool   `json:"is_active"`
	Admin      bool   `json:"admin"`
	Department *int   `json:"department"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	City       string `json:"city"`
}

// Registration holds the fields collected during the registration flow.
type Registration struct {
	UserID    int64
	FirstName string
	LastName  string
	Age       int
	Gender    string
	City      string
}

// FormData returns the registration as form fields for the backend.
func (r Registration) FormData() map[string]string {
	return map[string]string{
		"user_id":    strconv.FormatInt(r.UserID, 10),
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"age":        strconv.Itoa(r.Age),
		"gender":     r.Gender,
		"city":       r.City,
	}
}
