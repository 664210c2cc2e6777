package constants

import "time"

const (
	JudgeAPITimeout = 10 * time.Second
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	IngestBatchLimit     = 500
	RecomputeParallelism = 8
)

const (
	DefaultHistoryLimit     = 50
	MaxHistoryLimit         = 500
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 1000
)

const (
	ShutdownTimeout = 5 * time.Second
)
