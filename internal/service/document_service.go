package service

import (
	"context"
	"errors"
	"time"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"
	"legal-nav-go/internal/repository"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/storage"
	"legal-nav-go/pkg/vectorstore"
)

// 文档查询的可识别错误。
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoArchivedCopy   = errors.New("no archived copy available")
)

// 单文件分块查询的上限，防止超大文档拖垮响应。
const maxChunksPerFile = 1000

// DocumentService 定义了文档集合层面的管理操作。
type DocumentService interface {
	Stats(ctx context.Context) (*model.CollectionStats, error)
	Health(ctx context.Context) *model.HealthStatus
	FindByFile(ctx context.Context, filename string) ([]model.ChunkDTO, error)
	ClearAll(ctx context.Context) error
	DownloadURL(ctx context.Context, filename string) (string, error)
}

type documentService struct {
	store      vectorstore.Store
	chunkRepo  repository.ChunkRepository
	uploadRepo repository.UploadRepository
	cacheRepo  repository.AnswerCacheRepository
	esCfg      config.ElasticsearchConfig
	minioCfg   config.MinIOConfig
	version    string
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	store vectorstore.Store,
	chunkRepo repository.ChunkRepository,
	uploadRepo repository.UploadRepository,
	cacheRepo repository.AnswerCacheRepository,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	version string,
) DocumentService {
	return &documentService{
		store:      store,
		chunkRepo:  chunkRepo,
		uploadRepo: uploadRepo,
		cacheRepo:  cacheRepo,
		esCfg:      esCfg,
		minioCfg:   minioCfg,
		version:    version,
	}
}

// Stats 返回向量索引的集合统计信息。
func (s *documentService) Stats(ctx context.Context) (*model.CollectionStats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &model.CollectionStats{
		CollectionName:   s.esCfg.IndexName,
		DocumentCount:    count,
		PersistDirectory: s.esCfg.Addresses,
	}, nil
}

// Health 探测向量索引的可用性并返回服务健康状态。
// 索引不可达时整体状态降为 unhealthy，但仍以 200 返回。
func (s *documentService) Health(ctx context.Context) *model.HealthStatus {
	status := "healthy"
	vsStatus := "connected"
	if _, err := s.store.Count(ctx); err != nil {
		log.Warnf("[DocumentService] 向量索引健康检查失败: %v", err)
		status = "unhealthy"
		vsStatus = "unavailable"
	}
	return &model.HealthStatus{
		Status:            status,
		Version:           s.version,
		VectorstoreStatus: vsStatus,
	}
}

// FindByFile 返回指定文件的全部分块，按页码和分块序号排序。
// 文件不存在时返回 ErrDocumentNotFound。
func (s *documentService) FindByFile(ctx context.Context, filename string) ([]model.ChunkDTO, error) {
	docs, err := s.store.GetByMetadata(ctx, map[string]interface{}{
		model.MetaSourceFile: filename,
	}, maxChunksPerFile)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}

	chunks := make([]model.ChunkDTO, 0, len(docs))
	for _, doc := range docs {
		chunks = append(chunks, model.ChunkDTO{
			Content:  doc.Content,
			Metadata: doc.Metadata(),
			Page:     pageLabel(doc.Page),
		})
	}
	return chunks, nil
}

// ClearAll 清空向量索引、数据库台账与答案缓存。
// 对象存储中的原件归档保留，可用于重建索引。
func (s *documentService) ClearAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.chunkRepo.DeleteAll(); err != nil {
		log.Warnf("[DocumentService] 清空 document_chunks 失败: %v", err)
	}
	if err := s.uploadRepo.DeleteAll(); err != nil {
		log.Warnf("[DocumentService] 清空 document_uploads 失败: %v", err)
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.InvalidateAll(ctx); err != nil {
			log.Warnf("[DocumentService] 失效答案缓存失败: %v", err)
		}
	}
	log.Info("[DocumentService] 已清空全部文档")
	return nil
}

// DownloadURL 为指定文件的原件归档生成预签名下载链接，有效期 1 小时。
func (s *documentService) DownloadURL(ctx context.Context, filename string) (string, error) {
	upload, err := s.uploadRepo.FindByFileName(filename)
	if err != nil {
		return "", err
	}
	if upload == nil {
		return "", ErrDocumentNotFound
	}
	if upload.ObjectName == "" {
		return "", ErrNoArchivedCopy
	}
	return storage.GetPresignedURL(s.minioCfg.BucketName, upload.ObjectName, time.Hour)
}
