package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultBucket  = "resumes"
	defaultTimeout = 30 * time.Second
	objectPath     = "/storage/v1/object/{bucket}/{path}"
)

type SupabaseConfig struct {
	URL     string
	Key     string
	Bucket  string
	Timeout time.Duration
}

// Supabase downloads objects from a Supabase Storage bucket with the
// service key.
type Supabase struct {
	client *resty.Client
	bucket string
	logger *zap.Logger
}

func NewSupabase(cfg SupabaseConfig, logger *zap.Logger) (*Supabase, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase url is required")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("supabase key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = defaultBucket
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(base).
		SetAuthToken(key).
		SetHeader("apikey", key).
		SetTimeout(timeout)

	return &Supabase{client: client, bucket: bucket, logger: logger}, nil
}

func (s *Supabase) Download(ctx context.Context, locator string) ([]byte, error) {
	path := strings.Trim(strings.TrimSpace(locator), "/")
	if path == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrNotFound)
	}

	s.logger.Debug("download resume", zap.String("bucket", s.bucket), zap.String("path", path))

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("bucket", s.bucket).
		SetRawPathParam("path", path).
		Get(objectPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}

	if resp.IsError() {
		if missing(resp) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, s.bucket, path)
		}
		return nil, fmt.Errorf("download %s: bad status %s: %s", path, resp.Status(), strings.TrimSpace(resp.String()))
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("download %s: empty object", path)
	}
	return body, nil
}

// missing reports a missing object. Storage may answer 400 with the real
// status inside the error body.
func missing(resp *resty.Response) bool {
	if resp.StatusCode() == http.StatusNotFound {
		return true
	}
	code := gjson.GetBytes(resp.Body(), "statusCode").String()
	return code == "404" || gjson.GetBytes(resp.Body(), "error").String() == "not_found"
}
