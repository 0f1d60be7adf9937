package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cslogbook/backend/config"
	"cslogbook/backend/internal/dto"
)

var (
	ErrUploadMissing        = errors.New("未上传文件")
	ErrUploadTooLarge       = errors.New("上传文件过大")
	ErrUploadTypeNotAllowed = errors.New("不支持的文件类型")
)

// 申请附件与测试证明允许的扩展名
var allowedUploadExt = map[string]bool{
	".pdf":  true,
	".zip":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".docx": true,
}

// UploadStore 将 multipart 文件保存到 storage.upload_dir
// 文件名使用 uuid，数据库只保存相对路径
type UploadStore struct {
	root     string
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadStore 创建 UploadStore
func NewUploadStore(cfg config.StorageConfig, logger *zap.Logger) *UploadStore {
	return &UploadStore{
		root:     cfg.UploadDir,
		maxBytes: cfg.MaxUploadMB << 20,
		logger:   logger,
	}
}

// Save 保存表单字段 field 中的文件到 category/yyyy/mm/ 目录
func (s *UploadStore) Save(c *gin.Context, field, category string) (*dto.UploadDescriptor, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrUploadMissing
		}
		return nil, err
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrUploadTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedUploadExt[ext] {
		return nil, ErrUploadTypeNotAllowed
	}

	now := time.Now()
	rel := path.Join(category, now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return nil, fmt.Errorf("保存上传文件失败: %w", err)
	}
	return &dto.UploadDescriptor{Path: rel, OriginalFilename: filepath.Base(fh.Filename)}, nil
}

// Remove 业务处理失败时删除已保存的文件
func (s *UploadStore) Remove(d *dto.UploadDescriptor) {
	if d == nil || d.Path == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(d.Path))); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("清理上传文件失败", zap.String("path", d.Path), zap.Error(err))
	}
}
