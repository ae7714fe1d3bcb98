package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/griptape-ai/griptape-nodes-library-decart/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStore 把上游返回的二进制产物存入 MinIO/S3，换取可公开访问的 URL。
// 对应宿主引擎里静态文件服务的角色。
type ArtifactStore struct {
	Client *minio.Client
	Config model.S3Config
}

// OutputSaver 适配器需要的最小存储接口
type OutputSaver interface {
	SaveOutput(ctx context.Context, filename string, data []byte, contentType string) (string, error)
}

// NewArtifactStore 创建一个新的产物存储实例
func NewArtifactStore(cfg model.S3Config) (*ArtifactStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("连接 S3 失败: %w", err)
	}

	store := &ArtifactStore{
		Client: client,
		Config: cfg,
	}

	// 确保桶存在并设置策略
	if err := store.ensureBucket(); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureBucket 检查桶是否存在，不存在则创建并设置为公有读
func (s *ArtifactStore) ensureBucket() error {
	ctx := context.Background()
	found, err := s.Client.BucketExists(ctx, s.Config.Bucket)
	if err != nil {
		return fmt.Errorf("检查桶失败: %w", err)
	}

	if !found {
		if err := s.Client.MakeBucket(ctx, s.Config.Bucket, minio.MakeBucketOptions{Region: s.Config.Region}); err != nil {
			return fmt.Errorf("创建桶失败: %w", err)
		}
	}

	policy := fmt.Sprintf(`{
	  "Version": "2012-10-17",
	  "Statement": [
	    {
	      "Effect": "Allow",
	      "Principal": {"AWS": ["*"]},
	      "Action": ["s3:GetObject"],
	      "Resource": ["arn:aws:s3:::%s/*"]
	    }
	  ]
	}`, s.Config.Bucket)

	if err := s.Client.SetBucketPolicy(ctx, s.Config.Bucket, policy); err != nil {
		// 某些 S3 兼容服务（如 Cloudflare R2）不支持 SetBucketPolicy
		LogArtifactStore("⚠️ 设置桶策略失败（可忽略）: %v", err)
	}

	return nil
}

// SaveOutput 上传产物字节，返回公开访问 URL
func (s *ArtifactStore) SaveOutput(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s", strings.Trim(s.Config.OutputPrefix, "/"), filename)
	LogArtifactStore("⏫ 正在上传产物: %s (%d 字节)", objectName, len(data))

	_, err := s.Client.PutObject(ctx, s.Config.Bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传产物失败: %w", err)
	}

	LogArtifactStore("✅ 上传产物成功: %s", objectName)
	return s.BuildPublicURL(objectName), nil
}

// BuildPublicURL 构建公有访问 URL
func (s *ArtifactStore) BuildPublicURL(key string) string {
	endpoint := strings.TrimSuffix(s.Config.Endpoint, "/")

	if strings.Contains(endpoint, "amazonaws.com") {
		// AWS S3
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.Config.Bucket, key)
	}

	// MinIO / 其他 S3 兼容存储
	scheme := "http"
	if s.Config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.Config.Bucket, key)
}
