package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// URLResolver builds public object URLs for media keys stored on profiles and
// services.
type URLResolver struct {
	base   string
	bucket string
}

// NewURLResolver uses publicURL as the base when set, otherwise the client
// endpoint.
func NewURLResolver(client *minio.Client, bucket, publicURL string) *URLResolver {
	base := strings.TrimSpace(publicURL)
	if base == "" && client != nil {
		base = client.EndpointURL().String()
	}
	return &URLResolver{
		base:   strings.TrimRight(base, "/"),
		bucket: strings.Trim(bucket, "/"),
	}
}

func (r *URLResolver) PublicURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if isAbsoluteURL(ref) || r.base == "" {
		return ref
	}
	key := strings.TrimLeft(ref, "/")
	if r.bucket != "" && !strings.HasPrefix(key, r.bucket+"/") {
		key = r.bucket + "/" + key
	}
	return r.base + "/" + escapePath(key)
}

// CheckBucket fails when the media bucket is missing so misconfiguration shows
// up at boot instead of as broken images.
func CheckBucket(ctx context.Context, client *minio.Client, bucket string) error {
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio: bucket %q does not exist", bucket)
	}
	return nil
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func escapePath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ ports.ObjectURLResolver = (*URLResolver)(nil)
