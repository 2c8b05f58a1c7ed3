package service

import (
	"bytes"
	"context"
	"fmt"
	"lingocode_backend/internal/config"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// 导出的课程页面允许 CDN 缓存 10 分钟
const pageCacheControl = "public, max-age=600"

// StorageProvider 存放导出的静态页面，key 为 "/" 分隔的相对路径
type StorageProvider interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	URL(key string) string
	Name() string
}

// cleanKey 拒绝绝对路径和 ".." 片段
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid storage key %q", key)
		}
	}
	return path.Clean(key), nil
}

// LocalStorageProvider 写入 LocalPath，由 /uploads 静态路由对外提供
type LocalStorageProvider struct {
	Root string
}

// Put 先写临时文件再改名，读者不会看到写了一半的页面
func (p *LocalStorageProvider) Put(_ context.Context, key string, body []byte, _ string) error {
	dst := filepath.Join(p.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (p *LocalStorageProvider) Name() string { return util.StorageLocal }

func (p *LocalStorageProvider) URL(key string) string {
	return "/uploads/" + key
}

// MinioStorageProvider MinIO 存储
type MinioStorageProvider struct {
	cfg    *config.StorageConfig
	client *minio.Client
}

// NewMinioStorageProvider 桶不存在时自动创建
func NewMinioStorageProvider(ctx context.Context, cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &MinioStorageProvider{cfg: cfg, client: client}, nil
}

func (p *MinioStorageProvider) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := p.client.PutObject(ctx, p.cfg.MinioBucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: pageCacheControl,
	})
	return err
}

func (p *MinioStorageProvider) Name() string { return util.StorageMinio }

func (p *MinioStorageProvider) URL(key string) string {
	scheme := "http"
	if p.cfg.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.cfg.MinioEndpoint, p.cfg.MinioBucket, key)
}

// OSSStorageProvider 阿里云 OSS，页面以公共读方式上传
type OSSStorageProvider struct {
	cfg    *config.StorageConfig
	bucket *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{cfg: cfg, bucket: bucket}, nil
}

func (p *OSSStorageProvider) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return p.bucket.PutObject(key, bytes.NewReader(body),
		oss.ContentType(contentType),
		oss.CacheControl(pageCacheControl),
		oss.ObjectACL(oss.ACLPublicRead),
		oss.WithContext(ctx),
	)
}

func (p *OSSStorageProvider) Name() string { return util.StorageOSS }

func (p *OSSStorageProvider) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.cfg.OSSBucket, p.cfg.OSSEndpoint, key)
}

// StorageService 课程页面发布；配置了 PublicURL 时返回的地址以它为前缀
type StorageService struct {
	Provider  StorageProvider
	publicURL string
}

// NewStorageService 远程存储初始化失败时退回本地存储
func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		p, err := NewMinioStorageProvider(ctx, &cfg.Storage)
		cancel()
		if err != nil {
			logger.Log.Error("Failed to init MinIO storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init OSS storage, falling back to local", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Root: cfg.Storage.LocalPath}
	}

	return &StorageService{
		Provider:  provider,
		publicURL: strings.TrimRight(cfg.Storage.PublicURL, "/"),
	}
}

// Put 写入页面并返回对外地址
func (s *StorageService) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := s.Provider.Put(ctx, key, body, contentType); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *StorageService) URL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return s.Provider.URL(key)
}
