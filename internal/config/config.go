package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable: strings for identifiers and secrets, ints
// for durations, costs and cipher parameters.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DataDir        string // directory holding the per-entity data files
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	CipherN        int    // field cipher modulus
	CipherE        int    // field cipher encode exponent
	CipherD        int    // field cipher decode exponent

	// AgentUsers holds the usernames granted the AGENT role, from the
	// comma-separated AGENT_USERNAMES variable. Everyone else is a
	// CUSTOMER. Roles are derived, never stored in the client file.
	AgentUsers map[string]bool
}

// Role returns the JWT role claim for a username.
func (c Config) Role(username string) string {
	if c.AgentUsers[username] {
		return "AGENT"
	}
	return "CUSTOMER"
}

// Load reads configuration from environment variables. Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message. The cipher parameters default to
// the historical file-format values so existing data files stay
// readable.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DataDir:        envStr("DATA_DIR", "SaveData"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		CipherN:        envInt("CIPHER_N", 667),
		CipherE:        envInt("CIPHER_E", 3),
		CipherD:        envInt("CIPHER_D", 411),
		AgentUsers:     parseUserSet(os.Getenv("AGENT_USERNAMES")),
	}
}

// parseUserSet splits a comma-separated username list into a set.
func parseUserSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			set[u] = true
		}
	}
	return set
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error and
// exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
