// Package storage stores uploaded files on a Disk.
//
// Two drivers exist, selected by STORAGE_DISK:
//
//	local  a directory served under STORAGE_URL
//	s3     any S3-compatible object store (AWS S3, MinIO, R2, Spaces)
//
//	disk, err := storage.Open(ctx, storage.ConfigFromEnv())
//	err = disk.Put(ctx, "products/2f1c.jpg", file, "image/jpeg")
//	url := disk.URL("products/2f1c.jpg")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrNotExist is returned when a path has no file.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Get opens the file at path. The caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	// URL is the public address of path.
	URL(path string) string
}

// Config selects and configures a driver.
type Config struct {
	Driver string // local or s3

	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

// ConfigFromEnv reads STORAGE_* and S3_* settings.
func ConfigFromEnv() Config {
	return Config{
		Driver:     config.StorageDefault(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
}

// Open builds the configured disk.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q", cfg.Driver)
	}
}

// cleanPath rejects absolute paths and parent traversal.
func cleanPath(p string) (string, error) {
	p = strings.TrimLeft(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "", errors.New("storage: empty path")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("storage: path %q escapes the disk root", p)
		}
	}
	return p, nil
}
