// Package cli wires the dialoguetree command line: graph loading, save stores, the scripted
// game state used to answer conditions, and the interactive player.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/pkg/adapters/file"
	"github.com/aretw0/dialoguetree/pkg/adapters/memory"
	"github.com/aretw0/dialoguetree/pkg/adapters/redis"
	"github.com/aretw0/dialoguetree/pkg/adapters/sqlite"
	"github.com/aretw0/dialoguetree/pkg/persistence/middleware"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/serialization"
)

// Store backends selectable with --store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// EnvEncryptionKey names a 32 byte key. When set, saves are encrypted with AES-GCM.
const EnvEncryptionKey = "DIALOGUETREE_SAVE_KEY"

// Config carries the persistent flags shared by every command.
type Config struct {
	Dir       string
	LogLevel  string
	LogFormat string

	Store      string
	SaveDir    string
	Format     string
	RedisAddr  string
	SQLitePath string
	// ExcludeSpeakers holds regular expressions; matching speakers are never saved.
	ExcludeSpeakers []string
}

// Logger builds the logger described by LogLevel and LogFormat. It writes to Stderr.
func (c Config) Logger() (*slog.Logger, error) {
	level := slog.LevelInfo
	if c.LogLevel != "" {
		var err error
		if level, err = logging.ParseLevel(c.LogLevel); err != nil {
			return nil, err
		}
	}
	format := logging.Format(c.LogFormat)
	if format != logging.FormatJSON {
		format = logging.FormatText
	}
	return logging.NewWriter(os.Stderr, level, format), nil
}

// OpenStore creates the history store selected by Store. The returned close function
// releases backend connections.
func (c Config) OpenStore() (ports.HistoryStore, func() error, error) {
	noop := func() error { return nil }

	// Without --format every backend keeps its own default encoding.
	var ser *serialization.Serializer
	if c.Format != "" {
		var err error
		if ser, err = serialization.Parse(c.Format); err != nil {
			return nil, noop, err
		}
	}

	var (
		store   ports.HistoryStore
		closeFn = noop
	)
	switch c.Store {
	case "", StoreFile:
		dir := c.SaveDir
		if dir == "" {
			dir = filepath.Join(c.Dir, ".dialoguetree", "saves")
		}
		var opts []file.Option
		if ser != nil {
			opts = append(opts, file.WithSerializer(ser))
		}
		store = file.New(dir, opts...)
	case StoreMemory:
		store = memory.NewStore()
	case StoreRedis:
		var opts []redis.Option
		if ser != nil {
			opts = append(opts, redis.WithSerializer(ser))
		}
		rs := redis.New(c.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0, opts...)
		store, closeFn = rs, rs.Close
	case StoreSQLite:
		path := c.SQLitePath
		if path == "" {
			path = filepath.Join(c.Dir, ".dialoguetree", "saves.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, noop, fmt.Errorf("failed to create database directory: %w", err)
		}
		var opts []sqlite.Option
		if ser != nil {
			opts = append(opts, sqlite.WithSerializer(ser))
		}
		ss, err := sqlite.Open(path, opts...)
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = ss, ss.Close
	default:
		return nil, noop, fmt.Errorf("unknown store %q (want file, memory, redis or sqlite)", c.Store)
	}

	var mws []middleware.Middleware
	if len(c.ExcludeSpeakers) > 0 {
		for _, p := range c.ExcludeSpeakers {
			if _, err := regexp.Compile(p); err != nil {
				_ = closeFn()
				return nil, noop, fmt.Errorf("invalid --exclude-speakers pattern: %w", err)
			}
		}
		mws = append(mws, middleware.NewExcludeSpeakersMiddleware(c.ExcludeSpeakers))
	}
	if key := os.Getenv(EnvEncryptionKey); key != "" {
		if len(key) != 32 {
			_ = closeFn()
			return nil, noop, fmt.Errorf("%s must be exactly 32 bytes, got %d", EnvEncryptionKey, len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte(key)}))
	}
	return middleware.Chain(store, mws...), closeFn, nil
}
