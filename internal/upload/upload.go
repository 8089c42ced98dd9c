// Package upload stores user images on local disk or in S3-compatible
// object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const DefaultMaxBytes = 10 << 20

var (
	ErrEmpty    = errors.New("an image file is required")
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("only image files can be uploaded")
)

// Config selects the storage backend. S3 is used when S3Bucket is set.
type Config struct {
	Dir      string
	MaxBytes int64

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Storage persists a named object and returns the URL clients fetch it from.
type Storage interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Result is what a client receives after a successful upload.
type Result struct {
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

type Uploader struct {
	storage  Storage
	maxBytes int64
	now      func() time.Time
}

// New builds an Uploader for the configured backend.
func New(cfg Config) (*Uploader, error) {
	var storage Storage
	if cfg.S3Bucket != "" {
		storage = NewS3Storage(cfg)
	} else {
		disk, err := NewDiskStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		storage = disk
	}
	return NewUploader(storage, cfg.MaxBytes), nil
}

func NewUploader(storage Storage, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{storage: storage, maxBytes: maxBytes, now: time.Now}
}

func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// LocalHandler serves stored files when the backend is local disk.
func (u *Uploader) LocalHandler() (http.Handler, bool) {
	disk, ok := u.storage.(*DiskStorage)
	if !ok {
		return nil, false
	}
	return disk.Handler(), true
}

// SaveImage reads at most MaxBytes from r, checks that the content sniffs
// as an image and stores it under a fresh name.
func (u *Uploader) SaveImage(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > u.maxBytes {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	// SVG is excluded: it is served from our own origin and may carry script.
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") {
		return nil, ErrNotImage
	}

	name := fmt.Sprintf("%s-%d%s", uuid.NewString(), u.now().UnixMilli(), mt.Extension())
	url, err := u.storage.Put(ctx, name, mt.String(), data)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &Result{ImageURL: url, Filename: name}, nil
}
