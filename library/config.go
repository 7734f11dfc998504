package library

import (
	"github.com/spf13/viper"
)

// DefaultCatalog is the fixed set of titles planted into an empty store.
var DefaultCatalog = []string{
	"Python Programming",
	"Learn C in One Day",
	"Mastering JavaScript",
	"Data Structures and Algorithms",
	"Introduction to AI",
	"Database Design Fundamentals",
	"Clean Code",
	"Design Patterns in Python",
	"Networking Essentials",
	"Linux Basics for Hackers",
	"Operating Systems Concepts",
	"Computer Architecture",
	"Web Development with Flask",
	"HTML & CSS for Beginners",
	"Machine Learning with Python",
}

// Seed holds the rows inserted only when the store is empty: one admin
// account and the initial book catalog. It is injected into Initialize
// rather than living as package-level state.
type Seed struct {
	AdminUsername string
	AdminPassword string
	Catalog       []string
}

// Config is the application configuration, read from the environment
// with defaults matching the historical single-session deployment.
type Config struct {
	DatabasePath  string
	ReportPath    string
	AdminUsername string
	AdminPassword string

	// HashPasswords switches credential storage to bcrypt. Off by
	// default: the stock contract stores and compares passwords
	// verbatim, which is a known weakness rather than an accident.
	HashPasswords bool

	Debug bool
}

// NewConfig reads configuration from environment variables.
func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("library_db_path", "library.db")
	v.SetDefault("library_report_path", "library_report.txt")
	v.SetDefault("library_admin_username", "admin")
	v.SetDefault("library_admin_password", "admin123")
	v.SetDefault("library_hash_passwords", false)
	v.SetDefault("library_debug", false)

	return &Config{
		DatabasePath:  v.GetString("LIBRARY_DB_PATH"),
		ReportPath:    v.GetString("LIBRARY_REPORT_PATH"),
		AdminUsername: v.GetString("LIBRARY_ADMIN_USERNAME"),
		AdminPassword: v.GetString("LIBRARY_ADMIN_PASSWORD"),
		HashPasswords: v.GetBool("LIBRARY_HASH_PASSWORDS"),
		Debug:         v.GetBool("LIBRARY_DEBUG"),
	}
}

// Seed derives the initializer seed from the configuration.
func (c *Config) Seed() Seed {
	return Seed{
		AdminUsername: c.AdminUsername,
		AdminPassword: c.AdminPassword,
		Catalog:       DefaultCatalog,
	}
}

// Codec returns the credential codec the configuration selects.
func (c *Config) Codec() CredentialCodec {
	if c.HashPasswords {
		return BcryptCodec{}
	}
	return PlainCodec{}
}
