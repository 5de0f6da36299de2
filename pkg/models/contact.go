package models

// ContactInfo is the five-field contact record required to unlock a
// completed analysis report. All fields are required; Email must look like
// local@domain.tld. Field-level validation lives in internal/core.
type ContactInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}
