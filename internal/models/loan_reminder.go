package models

import (
	"time"

	"github.com/google/uuid"
)

// LoanReminder is a scheduled reminder email sent to every user with open
// loans on the given date.
type LoanReminder struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Subject  string    `json:"subject" db:"subject"`
	Body     string    `json:"body" db:"body"`
	SendDate time.Time `json:"send_date" db:"send_date"`
	Sent     bool      `json:"sent" db:"sent"`
}
