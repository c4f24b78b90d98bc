package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// MinioStore keeps blobs as objects under Prefix in one bucket
type MinioStore struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewMinioClient buat koneksi MinIO dan pastikan bucket ada
func NewMinioClient(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}
	return cli, nil
}

// NewMinio wraps a client; uploads and analysis documents share one bucket
// and are separated by prefix.
func NewMinio(cli *minio.Client, bucket, prefix string) *MinioStore {
	return &MinioStore{client: cli, bucketName: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *MinioStore) objectName(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, s.objectName(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(key)},
	)
	return err
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing object only surfaces on first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinioErr(key, err)
	}
	return data, nil
}

// Check implements middleware.HealthChecker
func (s *MinioStore) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func mapMinioErr(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
	}
	return err
}

// mimeType sederhana
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	case ".epub":
		return "application/epub+zip"
	default:
		return "application/octet-stream"
	}
}
