package journal

import (
	"context"
	"fmt"

	"github.com/matzehuels/navgraph/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
var Backends = []string{BackendNone, BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend         string `toml:"backend"`
	Path            string `toml:"path"`
	Limit           int    `toml:"limit"`
	RedisAddr       string `toml:"redis_addr"`
	RedisKey        string `toml:"redis_key"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open creates the journal described by opts.
func Open(ctx context.Context, opts Options) (Journal, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNull(), nil
	case BackendMemory:
		return NewMemory(opts.Limit), nil
	case BackendFile:
		if opts.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "journal backend %q needs a path", opts.Backend)
		}
		return NewFile(opts.Path)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "journal backend %q needs redis_addr", opts.Backend)
		}
		return NewRedis(ctx, opts.RedisAddr, opts.RedisKey)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "journal backend %q needs mongo_uri", opts.Backend)
		}
		return NewMongo(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown journal backend %q", opts.Backend)
}

// Describe returns a short human-readable description of opts.
func Describe(opts Options) string {
	switch opts.Backend {
	case BackendFile:
		return fmt.Sprintf("file %s", opts.Path)
	case BackendRedis:
		return fmt.Sprintf("redis %s", opts.RedisAddr)
	case BackendMongo:
		return fmt.Sprintf("mongo %s/%s", opts.MongoDatabase, opts.MongoCollection)
	case "":
		return BackendNone
	}
	return opts.Backend
}
