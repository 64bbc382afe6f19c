package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"
	"legal-nav-go/internal/pipeline"
	"legal-nav-go/internal/repository"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/storage"
)

// 上传校验失败的可识别错误，处理器据此映射 HTTP 状态码。
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// IngestService 定义了文档上传接入的操作接口。
type IngestService interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*model.UploadResult, error)
}

type ingestService struct {
	processor  *pipeline.Processor
	uploadRepo repository.UploadRepository
	cacheRepo  repository.AnswerCacheRepository
	ingestCfg  config.IngestConfig
	bucketName string
}

// NewIngestService 创建一个新的 IngestService 实例。
func NewIngestService(
	processor *pipeline.Processor,
	uploadRepo repository.UploadRepository,
	cacheRepo repository.AnswerCacheRepository,
	ingestCfg config.IngestConfig,
	bucketName string,
) IngestService {
	return &ingestService{
		processor:  processor,
		uploadRepo: uploadRepo,
		cacheRepo:  cacheRepo,
		ingestCfg:  ingestCfg,
		bucketName: bucketName,
	}
}

// Upload 同步完成一次文档接入：
// 校验 -> 暂存 -> 归档原件 -> 切块向量化入库 -> 更新上传台账 -> 失效答案缓存。
// 同一内容（MD5 相同）重复上传会覆盖旧的分块，结果保持幂等。
func (s *ingestService) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*model.UploadResult, error) {
	fileName := filepath.Base(fileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(fileName))

	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(s.ingestCfg.AllowedExtensions, ", "))
	}
	maxBytes := s.ingestCfg.MaxFileSizeMB * 1024 * 1024
	if fileHeader.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %dMB", ErrFileTooLarge, fileHeader.Size, s.ingestCfg.MaxFileSizeMB)
	}

	log.Infof("[IngestService] 收到上传文件: %s (%d bytes)", fileName, fileHeader.Size)

	tmpPath, err := s.saveTemp(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("暂存上传文件失败: %w", err)
	}
	defer os.Remove(tmpPath)

	fileMD5, err := pipeline.FileMD5(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("计算文件 MD5 失败: %w", err)
	}

	// 归档原件到对象存储，供后续下载
	objectName := "originals/" + fileName
	if err := s.archiveOriginal(ctx, tmpPath, objectName, fileHeader.Size); err != nil {
		log.Warnf("[IngestService] 归档原件失败, 继续接入流程: %v", err)
		objectName = ""
	}

	upload := &model.DocumentUpload{
		FileMD5:    fileMD5,
		FileName:   fileName,
		FileType:   ext,
		TotalSize:  fileHeader.Size,
		Status:     model.UploadStatusProcessing,
		ObjectName: objectName,
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		return nil, fmt.Errorf("创建上传记录失败: %w", err)
	}

	ids, err := s.processor.Process(ctx, tmpPath, fileName, fileMD5)
	if err != nil {
		_ = s.uploadRepo.MarkProcessed(fileMD5, model.UploadStatusFailed, 0)
		return nil, err
	}
	if err := s.uploadRepo.MarkProcessed(fileMD5, model.UploadStatusCompleted, len(ids)); err != nil {
		log.Warnf("[IngestService] 更新上传状态失败 (file=%s): %v", fileName, err)
	}

	// 索引内容变化，旧答案不再可信
	if s.cacheRepo != nil {
		if err := s.cacheRepo.InvalidateAll(ctx); err != nil {
			log.Warnf("[IngestService] 失效答案缓存失败: %v", err)
		}
	}

	log.Infof("[IngestService] 上传处理完成, file: %s, chunks: %d", fileName, len(ids))
	return &model.UploadResult{
		Success:       true,
		Message:       fmt.Sprintf("Successfully processed %s", fileName),
		Filename:      fileName,
		ChunksCreated: len(ids),
		DocumentIDs:   ids,
	}, nil
}

func (s *ingestService) extensionAllowed(ext string) bool {
	for _, allowed := range s.ingestCfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// saveTemp 将上传内容写入临时文件，返回其路径。
func (s *ingestService) saveTemp(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ingest-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// archiveOriginal 将原始文件归档到对象存储。
func (s *ingestService) archiveOriginal(ctx context.Context, path, objectName string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.PutObject(ctx, s.bucketName, objectName, f, size, "application/octet-stream")
}
