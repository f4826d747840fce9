// Package core defines the key-value contract shared by the plan storage
// backends.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverS3       Driver = "s3"
	DriverMemory   Driver = "memory"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("store: key not found")

// Backend is durable key-value storage for whole-document payloads.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
	Driver() Driver
}
