package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/auction/go/internal/dbconfig"
	"github.com/rs/zerolog/log"
)

func setupDatabase(dbConfig dbconfig.Config) (*sql.DB, error) {
	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("dsn", dbConfig.Redacted()).Msg("connected to database")
	return database, nil
}
