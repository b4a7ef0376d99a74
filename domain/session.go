package domain

import "fmt"

// Identity is the user extracted from token claims.
type Identity struct {
	Id       string
	Username string
}

func (i *Identity) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUsername: %s)", i.Id, i.Username)
}

// Credentials carries a username/password pair for login and registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func ValidateCredentials(c Credentials) error {
	if len(c.Username) < 3 {
		return &ValidationError{Field: "username", Message: "username must be at least 3 characters"}
	}
	if len(c.Password) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}
