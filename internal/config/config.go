package config

// Version information, set at build time

var Version = "development"
var CommitHash = "development"
var BuildTimestamp = "0000-00-00T00:00:00Z"

// Session cookie

const SessionCookieName = "session_token"

// DeletedCookieValue is the sentinel a cleared cookie carries until the
// browser drops it. A cookie with this value resolves as anonymous without
// a storage lookup.
const DeletedCookieValue = "deleted"

// TOTP provisioning label

const TotpIssuer = "Doskvol-Ltd"

// Main app config

type Config struct {
	Port           int    `mapstructure:"port" validate:"required"`
	Address        string `mapstructure:"address" validate:"required,ip4_addr"`
	DatabasePath   string `mapstructure:"database-path" validate:"required"`
	LogLevel       string `mapstructure:"log-level" validate:"oneof=trace debug info warn error fatal panic"`
	TrustedProxies string `mapstructure:"trusted-proxies"`
}

// UserContext is the per-request identity resolved from the session cookie.
// It is recomputed on every request and never cached.

type UserContext struct {
	Username   string
	IsLoggedIn bool
}
