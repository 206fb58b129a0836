package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartmuseum/storage"

	"github.com/restoops/backend-go/internal/config"
)

// S3Archive stores exported reports in an S3-compatible bucket via
// chartmuseum's Amazon backend.
type S3Archive struct {
	backend storage.Backend
}

// NewS3Archive builds an archive client from the export configuration.
func NewS3Archive(cfg config.ExportConfig) (*S3Archive, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("export endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("export credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"", // no prefix
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &S3Archive{backend: backend}, nil
}

// ListObjects lists archived exports under a prefix.
func (a *S3Archive) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := a.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("archive list failed: %w", err)
	}
	results := make([]ObjectInfo, 0)
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// UploadObject stores one export under the given key.
func (a *S3Archive) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := a.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("archive upload of %s failed: %w", key, err)
	}
	return nil
}

// DownloadObject fetches an archived export to a local path.
func (a *S3Archive) DownloadObject(ctx context.Context, key, destPath string) error {
	object, err := a.backend.GetObject(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, object.Content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

var _ ObjectStorage = (*S3Archive)(nil)

// LocalArchive keeps exports on the local filesystem, for development and for
// deployments without object storage.
type LocalArchive struct {
	dir string
}

func NewLocalArchive(dir string) *LocalArchive {
	return &LocalArchive{dir: dir}
}

func (a *LocalArchive) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var results []ObjectInfo
	root := a.dir
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			results = append(results, ObjectInfo{Key: key, Size: info.Size()})
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return results, err
}

func (a *LocalArchive) UploadObject(_ context.Context, key string, data []byte) error {
	dest := filepath.Join(a.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", dest, err)
	}
	return os.WriteFile(dest, data, 0o644)
}

func (a *LocalArchive) DownloadObject(_ context.Context, key, destPath string) error {
	data, err := os.ReadFile(filepath.Join(a.dir, filepath.FromSlash(key)))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	return os.WriteFile(destPath, data, 0o644)
}

var _ ObjectStorage = (*LocalArchive)(nil)

func awsBool(v bool) *bool {
	return &v
}
