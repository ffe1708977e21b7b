package constants

const (
	AppName            = "streaklit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/streaklit/streaklit.db"
	DefaultUserID      = "local"
	Version            = "v0.1.0"

	// DateFormat is the calendar day format used for completed days (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// EnvDBConnection overrides the storage location when --config is not given
	EnvDBConnection = "STREAKLIT_DB_CONNECTION"

	// Practice limits
	MaxPracticeNameLength = 100
	MaxPracticeDays       = 3650

	// Log file constants
	LogDirName    = "logs"
	LogFileName   = "streaklit.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)
