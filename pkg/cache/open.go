package cache

import (
	"context"
	"strings"

	"github.com/matzehuels/xdsmgen/pkg/errors"
)

// DefaultMongoDatabase is used when a mongodb URL names no database.
const DefaultMongoDatabase = "xdsmgen"

// Open returns the backend described by spec:
//
//	none, off           NullCache
//	file, ""            FileCache in dir
//	redis://...         RedisCache
//	mongodb://...       MongoCache (database from the URL path)
func Open(ctx context.Context, spec, dir string) (Cache, error) {
	switch {
	case spec == "none" || spec == "off":
		return NewNullCache(), nil
	case spec == "" || spec == "file":
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		c, err := NewRedisCache(ctx, spec)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		c, err := NewMongoCache(ctx, spec, mongoDatabase(spec))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, errors.InvalidConfig("unknown cache backend %q (use none, file, redis://... or mongodb://...)", spec)
}

// mongoDatabase extracts the database from mongodb://host/db?opts.
func mongoDatabase(uri string) string {
	rest := uri[strings.Index(uri, "://")+3:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return DefaultMongoDatabase
	}
	db := rest[slash+1:]
	if q := strings.IndexByte(db, '?'); q >= 0 {
		db = db[:q]
	}
	if db == "" {
		return DefaultMongoDatabase
	}
	return db
}
