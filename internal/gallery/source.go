package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true}

func isImage(name string) bool {
	return imageExts[strings.ToLower(path.Ext(name))]
}

// DirSource reads images from <Dir>/<category>/ and serves them below URLPrefix.
type DirSource struct {
	Dir       string
	URLPrefix string
}

func (s DirSource) List(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.Dir, category))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gallery: read %s: %w", category, err)
	}
	prefix := strings.TrimRight(s.URLPrefix, "/")
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isImage(e.Name()) {
			continue
		}
		out = append(out, prefix+"/"+url.PathEscape(category)+"/"+url.PathEscape(e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// BucketSource lists public objects under <Prefix><category>/ in a GCS bucket.
type BucketSource struct {
	client *storage.Client
	bucket string
	prefix string
	host   string
}

// NewBucketSource wraps an existing storage client.
func NewBucketSource(client *storage.Client, bucket, prefix string) (*BucketSource, error) {
	if client == nil {
		return nil, errors.New("gallery: storage client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gallery: bucket name is required")
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BucketSource{client: client, bucket: bucket, prefix: prefix, host: "https://storage.googleapis.com"}, nil
}

func (s *BucketSource) List(ctx context.Context, category string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix + category + "/"})
	var out []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gallery: list gs://%s/%s%s: %w", s.bucket, s.prefix, category, err)
		}
		if strings.HasSuffix(attrs.Name, "/") || !isImage(attrs.Name) {
			continue
		}
		out = append(out, s.objectURL(attrs.Name))
	}
	sort.Strings(out)
	return out, nil
}

func (s *BucketSource) objectURL(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.host + "/" + s.bucket + "/" + strings.Join(segments, "/")
}
