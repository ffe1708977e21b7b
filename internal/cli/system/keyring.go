package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streaklit/internal/cli"
	"github.com/julianstephens/streaklit/internal/keyring"
	"github.com/julianstephens/streaklit/internal/storage"
	"github.com/julianstephens/streaklit/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !storage.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	_, err := postgres.ValidateConnString(cmd.ConnectionString)
	if err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			ctx.Println(cli.WarningStyle.Render("⚠️  Warning: Connection string contains embedded credentials."))
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		} else {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	if err := keyring.Connection.Set(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println(cli.SuccessStyle.Render("✓ Connection string stored in the OS keyring"))
	ctx.Println(cli.MutedStyle.Render("  streaklit will use it whenever --config is not given"))
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.Connection.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'streaklit keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Printf("%s %s\n", cli.TitleStyle.Render("Stored connection:"), maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := keyring.Connection.Delete()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	ctx.Println(cli.SuccessStyle.Render("✓ Connection string removed from the OS keyring"))
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.Available() {
		ctx.Println(cli.WarningStyle.Render("OS keyring is not available on this system"))
		return keyring.ErrKeyringUnavailable
	}

	ctx.Println(cli.SuccessStyle.Render("✓ OS keyring is available"))
	_, err := keyring.Connection.Get()
	switch {
	case err == nil:
		ctx.Println("  A connection string is stored")
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println(cli.MutedStyle.Render("  No connection string stored"))
	default:
		return err
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string
func maskPassword(conn string) string {
	scheme, rest, isURL := strings.Cut(conn, "://")
	if !isURL {
		return maskDSNPassword(conn)
	}
	// the last @ ends the user info, passwords may contain @
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return conn
	}
	user, _, hasPassword := strings.Cut(rest[:at], ":")
	if !hasPassword {
		return conn
	}
	return scheme + "://" + user + ":****" + rest[at:]
}

func maskDSNPassword(conn string) string {
	fields := strings.Fields(conn)
	for i, f := range fields {
		if key, _, ok := strings.Cut(f, "="); ok && strings.EqualFold(key, "password") {
			fields[i] = key + "=****"
		}
	}
	return strings.Join(fields, " ")
}
