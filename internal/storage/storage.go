// Package storage holds backup and archive documents outside the data
// stores: on the local disk or in a MinIO/S3 bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/xelth-com/maintdesk/internal/config"
)

// ErrNotFound is returned by Get for an unknown object name
var ErrNotFound = errors.New("object not found")

// Sink stores named JSON documents
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Location(name string) string
}

// BackupName returns the object name of a full backup taken at t
func BackupName(t time.Time) string {
	return fmt.Sprintf("backups/%s/maintdesk-backup-%s.json", t.Format("2006/01/02"), t.Format("20060102-150405"))
}

// ArchiveName returns the object name of a yearly job archive
func ArchiveName(year int) string {
	return fmt.Sprintf("archives/jobs-%d.json", year)
}

// FileSink writes documents below a directory
type FileSink struct {
	dir string
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

// Put writes data to dir/name through a temp file and rename
func (s *FileSink) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Get opens dir/name
func (s *FileSink) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return f, err
}

// Location returns the file path of name
func (s *FileSink) Location(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// MinIOSink stores documents in an S3-compatible bucket
type MinIOSink struct {
	client *minio.Client
	bucket string
}

// NewMinIOSink connects to the configured endpoint and creates the bucket if
// it does not exist yet
func NewMinIOSink(ctx context.Context, cfg config.MinIOConfig) (*MinIOSink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOSink{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads data as application/json
func (s *MinIOSink) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// Get downloads name
func (s *MinIOSink) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	object, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}

// Location returns the s3:// URL of name
func (s *MinIOSink) Location(name string) string {
	return "s3://" + s.bucket + "/" + name
}

// ObjectWriter stores the bytes of each Write as the whole content of one
// object. It suits single-shot writers like json.Encoder.Encode and lets a
// failed upload surface as a write error.
type ObjectWriter struct {
	ctx  context.Context
	sink Sink
	name string
}

// NewObjectWriter returns a writer for name in sink
func NewObjectWriter(ctx context.Context, sink Sink, name string) *ObjectWriter {
	return &ObjectWriter{ctx: ctx, sink: sink, name: name}
}

func (w *ObjectWriter) Write(p []byte) (int, error) {
	if err := w.sink.Put(w.ctx, w.name, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// New returns a MinIO sink when an endpoint is configured, else a file sink
// rooted at fallbackDir
func New(ctx context.Context, cfg config.MinIOConfig, fallbackDir string) (Sink, error) {
	if cfg.Endpoint == "" {
		return NewFileSink(fallbackDir), nil
	}
	return NewMinIOSink(ctx, cfg)
}
