// Package artifact publishes generated chaincode source. Objects are keyed
// "<prefix>/<slug>/<version>/<slug>.go" so every version of a chaincode keeps
// its own copy.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/matthewbaird/chaincodegen/internal/config"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

// Sink stores one artifact and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (location string, err error)
}

// Key returns the object key for a chaincode name and version.
func Key(prefix, name, version string) string {
	slug := project.Slug(name)
	v := strings.TrimSpace(version)
	if v == "" {
		v = "unversioned"
	}
	v = strings.ReplaceAll(v, "/", "_")
	return path.Join(strings.Trim(prefix, "/"), slug, v, slug+".go")
}

// Multi writes to every sink in order and returns all locations. It keeps
// going after a failure and reports the joined errors.
type Multi []Sink

func (m Multi) Put(ctx context.Context, key string, data []byte) ([]string, error) {
	var locations []string
	var errs []error
	for _, s := range m {
		loc, err := s.Put(ctx, key, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
			continue
		}
		locations = append(locations, loc)
	}
	return locations, errors.Join(errs...)
}

// FromConfig builds the sinks the configuration enables: a directory sink
// when Dir is set and an S3 sink when S3Bucket is set.
func FromConfig(ctx context.Context, cfg config.ArtifactsConfig) (Multi, error) {
	var sinks Multi
	if cfg.Dir != "" {
		sinks = append(sinks, DirSink{Root: cfg.Dir})
	}
	if cfg.S3Bucket != "" {
		s3sink, err := NewS3Sink(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3sink)
	}
	return sinks, nil
}
