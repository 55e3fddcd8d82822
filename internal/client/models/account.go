// Package models defines the records the session and history stores persist:
// accounts, the active session, search history entries and their result
// snapshots. JSON field names match the layout the storefront always wrote.
package models

// Account is a registered identity in the account registry.
// Password holds the secret in the form produced by the configured
// cryptox.SecretCodec (verbatim for the plain codec).
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Session returns the session derived from the account.
func (a Account) Session() Session {
	return Session{ID: a.ID, Email: a.Email, Name: a.Name}
}
