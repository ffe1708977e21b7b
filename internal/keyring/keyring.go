// Package keyring keeps the PostgreSQL connection string in the OS keyring so
// the password never has to appear in flags, env vars or shell history.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streaklit/internal/constants"
)

var (
	ErrNotFound           = errors.New("credentials not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrEmptySecret        = errors.New("connection string cannot be empty")
)

// Entry is one service/user slot in the OS keyring
type Entry struct {
	Service string
	User    string
}

// Connection holds the database connection string
var Connection = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

func (e Entry) Get() (string, error) {
	secret, err := gokeyring.Get(e.Service, e.User)
	switch {
	case errors.Is(err, gokeyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (e Entry) Set(secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}
	if err := gokeyring.Set(e.Service, e.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the entry, returning ErrNotFound when it was never set
func (e Entry) Delete() error {
	err := gokeyring.Delete(e.Service, e.User)
	switch {
	case errors.Is(err, gokeyring.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available probes the keyring with a lookup that is expected to miss
func Available() bool {
	_, err := gokeyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}
