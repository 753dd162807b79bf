package database

import (
	"fmt"
	"net/url"

	"breaktime.service/internal/config"
)

// PostgresDSN builds a connection URL for the given login.
func PostgresDSN(cfg config.Config, user, password string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%s", cfg.DBHost, cfg.DBPort),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
