// Package config provides database configuration helpers for PostgreSQL
// connections for the example: a transactional shopping-cart store.
//
// This package contains factory functions for creating database connections
// using different PostgreSQL drivers (pgx.Pool, sql.DB, sqlx.DB), each of
// which can back the transaction journal middleware.
package config
