package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quest_reward_backend/internal/config"
	"quest_reward_backend/internal/grading"
	"quest_reward_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	// 本地归档不对外提供访问，返回磁盘路径
	return filepath.Join(p.Config.LocalPath, filename)
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// ArchivedAttempt 每次评分写入的归档文档
type ArchivedAttempt struct {
	StudentID    uint                `json:"student_id"`
	AssignmentID string              `json:"assignment_id"`
	AttemptID    string              `json:"attempt_id,omitempty"`
	GradedAt     time.Time           `json:"graded_at"`
	Result       grading.GradeResult `json:"result"`
}

// StorageService 以 JSON 对象归档评分结果
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == "minio" {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init minio, archiving locally", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// ArchiveKey 作答的对象名，重新评分会覆盖
func ArchiveKey(a *ArchivedAttempt) string {
	ref := a.AttemptID
	if ref == "" {
		ref = a.AssignmentID + "-" + a.GradedAt.UTC().Format("20060102T150405.000000000")
	}
	return fmt.Sprintf("attempts/%d/%s.json", a.StudentID, safeName(ref))
}

// safeName 防止客户端提供的 ID 逃出归档前缀
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.ReplaceAll(s, "..", "_"))
}

func (s *StorageService) Archive(ctx context.Context, a *ArchivedAttempt) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", errors.Wrap(err, "encode archived attempt")
	}
	url, err := s.Provider.Upload(ctx, ArchiveKey(a), bytes.NewReader(data), int64(len(data)), "application/json")
	return url, errors.Wrap(err, "upload archived attempt")
}
