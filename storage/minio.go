package storage

import (
	"context"
	"fmt"
	"io"

	"groovy/config"
	"groovy/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 封装了 MinIO 客户端，对象名即存储文件名
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioStore 创建 MinIO 存储。连接在 Init 中校验。
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket, region: cfg.MinioRegion}, nil
}

// Init 检查存储桶，不存在则创建
func (m *MinioStore) Init(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", m.bucket))
	}
	logger.Info("MinIO storage ready",
		logger.String("endpoint", m.client.EndpointURL().Host),
		logger.String("bucket", m.bucket))
	return nil
}

func (m *MinioStore) Store(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}
	stored, err := UniqueName(name)
	if err != nil {
		return "", err
	}
	if err := m.put(ctx, stored, r, size); err != nil {
		return "", err
	}
	return stored, nil
}

func (m *MinioStore) StoreAs(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}
	name, err := flatName(filename)
	if err != nil {
		return "", err
	}
	if err := m.put(ctx, name, r, size); err != nil {
		return "", err
	}
	return name, nil
}

// put uploads r; size < 0 lets the client stream in parts.
func (m *MinioStore) put(ctx context.Context, name string, r io.Reader, size int64) error {
	info, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: DetermineMediaType(name),
	})
	if err != nil {
		return fmt.Errorf("上传文件 %s 失败: %w", name, err)
	}
	if info.Size == 0 {
		_ = m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
		return ErrEmptyFile
	}
	return nil
}

// Open returns the object handle; minio.Object seeks with ranged GETs.
func (m *MinioStore) Open(ctx context.Context, filename string) (io.ReadSeekCloser, FileInfo, error) {
	name, err := cleanName(filename)
	if err != nil {
		return nil, FileInfo{}, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, FileInfo{}, m.translate(err, filename)
	}
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, FileInfo{}, m.translate(err, filename)
	}
	return obj, toFileInfo(st), nil
}

func (m *MinioStore) Delete(ctx context.Context, filename string) error {
	name, err := cleanName(filename)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("删除对象 %s 失败: %w", name, err)
	}
	return nil
}

// List 列出前缀下的所有对象
func (m *MinioStore) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		files = append(files, toFileInfo(object))
	}
	return files, nil
}

func (m *MinioStore) translate(err error, filename string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return fmt.Errorf("读取对象 %s 失败: %w", filename, err)
}

func toFileInfo(o minio.ObjectInfo) FileInfo {
	ct := o.ContentType
	if ct == "" {
		ct = DetermineMediaType(o.Key)
	}
	return FileInfo{Name: o.Key, Size: o.Size, ModTime: o.LastModified, ContentType: ct}
}
