package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account is a registered user as stored by the dev server. The password
// hash never leaves the db package boundary in API responses.
type Account struct {
	Id           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func (a *Account) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUsername: %s \n\tCreatedAt: %s)", a.Id, a.Username, a.CreatedAt)
}
