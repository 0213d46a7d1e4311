// Package gcs uploads claim artifacts to a Google Cloud Storage bucket
// and hands back publicly addressable URLs.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/claimintake-backend/internal/pkg/ctxutil"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
)

type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type Config struct {
	Bucket        string
	PublicBaseURL string
	EmulatorHost  string
	Timeout       time.Duration
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucket        string
	publicBaseURL string
	timeout       time.Duration
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Uploader, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET_NAME")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	var (
		stClient *storage.Client
		err      error
	)
	emulator := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	if emulator != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulator)
		stClient, err = storage.NewClient(ctx, option.WithoutAuthentication())
	} else {
		stClient, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" && emulator != "" {
		publicBase = emulator
	}

	serviceLog := log.With("service", "BucketService")
	serviceLog.Info("Object storage initialized",
		"bucket", cfg.Bucket,
		"emulator_host", emulator,
		"public_base_url", publicBase,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBase,
		timeout:       cfg.Timeout,
	}, nil
}

func (bs *bucketService) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), bs.timeout)
	defer cancel()

	w := bs.storageClient.Bucket(bs.bucket).Object(key).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object writer %q: %w", key, err)
	}
	return bs.PublicURL(key), nil
}

func (bs *bucketService) PublicURL(key string) string {
	escaped := escapeKey(key)
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, bs.bucket, escaped)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var nonWord = regexp.MustCompile(`[^\w.]+`)

// ObjectKey namespaces an upload under its year-month with a random
// token, keeping a sanitized trace of the original filename.
func ObjectKey(now time.Time, token, filename string) string {
	safe := nonWord.ReplaceAllString(strings.TrimSpace(filename), "_")
	if safe == "" {
		safe = "upload"
	}
	return fmt.Sprintf("%s/%s_%s", now.Format("2006-01"), token, safe)
}
