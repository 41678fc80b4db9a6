package inquiries

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

var Statuses = []string{StatusPending, StatusInProgress, StatusResolved}

type Inquiry struct {
	ID            string    `json:"id"`
	TransactionNo string    `json:"transactionNo"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	ContactNo     string    `json:"contactNo"`
	EmailAddress  string    `json:"emailAddress"`
	Subject       string    `json:"subject"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Input carries the editable fields of an inquiry.
type Input struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ContactNo    string `json:"contactNo"`
	EmailAddress string `json:"emailAddress"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Status       string `json:"status"`
}
