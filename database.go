package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"time-tracker-backend/internal/config"
)

// normalizeDatabaseURL rewrites postgresql:// to postgres://. With a CA file
// the ssl* query parameters are dropped so they cannot override the TLS
// config built from that file; without one, sslmode=disable is added unless
// the URL already chooses a mode.
func normalizeDatabaseURL(raw string, withCA bool) (string, error) {
	if strings.HasPrefix(raw, "postgresql:") {
		raw = "postgres" + strings.TrimPrefix(raw, "postgresql")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	q := u.Query()
	if withCA {
		for k := range q {
			if strings.HasPrefix(strings.ToLower(k), "ssl") {
				q.Del(k)
			}
		}
	} else if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// loadTLSConfig builds a verifying TLS config trusting the CA bundle at path.
func loadTLSConfig(path, serverName string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return &tls.Config{
		RootCAs:    pool,
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// connConfig builds the pgx connection config from the application config,
// installing the CA-backed TLS settings when SSL_CA_PATH is set.
func connConfig(cfg *config.Config) (*pgx.ConnConfig, error) {
	databaseURL, err := normalizeDatabaseURL(cfg.DatabaseURL, cfg.SSLCAPath != "")
	if err != nil {
		return nil, err
	}

	pgxConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.SSLCAPath != "" {
		tlsConfig, err := loadTLSConfig(cfg.SSLCAPath, pgxConfig.Host)
		if err != nil {
			return nil, err
		}
		pgxConfig.TLSConfig = tlsConfig
		pgxConfig.Fallbacks = nil
	}

	return pgxConfig, nil
}

// openDB connects to PostgreSQL through the pgx database/sql driver, waiting
// for the server to accept connections.
func openDB(ctx context.Context, pgxConfig *pgx.ConnConfig, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	var err error
	var db *sql.DB
	for i := 0; i < cfg.DBMaxRetries; i++ {
		db = stdlib.OpenDB(*pgxConfig)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info("Database connection established", "host", pgxConfig.Host, "database", pgxConfig.Database)
			return db, nil
		}

		db.Close()
		if i == cfg.DBMaxRetries-1 {
			break
		}
		// Log the actual error on the first attempts and every 10th after that
		if i%10 == 0 || i < 5 {
			log.Warn("Database not ready, retrying", "attempt", i+1, "max_attempts", cfg.DBMaxRetries, "retry_in", cfg.DBRetryDelay, "error", err)
		} else {
			log.Warn("Database not ready, retrying", "attempt", i+1, "max_attempts", cfg.DBMaxRetries)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.DBRetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.DBMaxRetries, err)
}
