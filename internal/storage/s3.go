package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrInvalidKey = errors.New("invalid object key")

type S3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("missing required S3 env: S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY")
	}
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &S3Storage{client: cl, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket on first start.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

type ObjectStat struct {
	ETag         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

func (s *S3Storage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (ObjectStat, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return ObjectStat{}, err
	}
	return ObjectStat{ETag: info.ETag, Size: info.Size, ContentType: contentType, LastModified: time.Now().UTC()}, nil
}

// GetObject reads the whole object; snapshots are small HTML documents.
func (s *S3Storage) GetObject(ctx context.Context, key string) ([]byte, ObjectStat, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectStat{}, err
	}
	defer obj.Close()
	st, err := obj.Stat()
	if err != nil {
		return nil, ObjectStat{}, err
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, ObjectStat{}, err
	}
	return data, ObjectStat{ETag: st.ETag, Size: st.Size, ContentType: st.ContentType, LastModified: st.LastModified}, nil
}

func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// SnapshotStore archives the rewritten HTML of bookmarked documents so a
// precedent stays readable if the upstream provider drops it.
type SnapshotStore struct {
	objects *S3Storage
}

func NewSnapshotStore(objects *S3Storage) *SnapshotStore {
	return &SnapshotStore{objects: objects}
}

// SnapshotKey returns the object key for a user's copy of a document.
func SnapshotKey(userID uint, docID string) (string, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" || strings.Contains(docID, "..") || strings.ContainsAny(docID, "/\\") {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf("snapshots/%d/%s.html", userID, docID), nil
}

func (s *SnapshotStore) Put(ctx context.Context, userID uint, docID string, html string) (string, error) {
	key, err := SnapshotKey(userID, docID)
	if err != nil {
		return "", err
	}
	body := []byte(html)
	if _, err := s.objects.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)), "text/html; charset=utf-8"); err != nil {
		return "", err
	}
	return key, nil
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	data, _, err := s.objects.GetObject(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	return s.objects.DeleteObject(ctx, key)
}
