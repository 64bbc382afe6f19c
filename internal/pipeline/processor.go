package pipeline

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"
	"legal-nav-go/internal/repository"
	"legal-nav-go/pkg/embedding"
	"legal-nav-go/pkg/log"
	"legal-nav-go/pkg/tasks"
	"legal-nav-go/pkg/vectorstore"
)

// 向量化批大小。Embedding API 对单次输入条数有上限。
const embedBatchSize = 16

// Processor 封装了文档接入的所有依赖和逻辑。
type Processor struct {
	loader          *Loader
	embeddingClient embedding.Client
	store           vectorstore.Store
	chunkRepo       repository.ChunkRepository
	uploadRepo      repository.UploadRepository
	ingestCfg       config.IngestConfig
	modelVersion    string
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	loader *Loader,
	embeddingClient embedding.Client,
	store vectorstore.Store,
	chunkRepo repository.ChunkRepository,
	uploadRepo repository.UploadRepository,
	ingestCfg config.IngestConfig,
	modelVersion string,
) *Processor {
	return &Processor{
		loader:          loader,
		embeddingClient: embeddingClient,
		store:           store,
		chunkRepo:       chunkRepo,
		uploadRepo:      uploadRepo,
		ingestCfg:       ingestCfg,
		modelVersion:    modelVersion,
	}
}

// Process 是文档接入的主函数：装载、切块、落库、向量化并写入向量索引。
// 按 fileMD5 幂等：重复处理同一文件时先清理旧的分块记录。
func (p *Processor) Process(ctx context.Context, path, fileName, fileMD5 string) ([]string, error) {
	log.Infof("[Processor] 开始处理文档, FileName: %s, FileMD5: %s", fileName, fileMD5)
	fileType := strings.ToLower(filepath.Ext(fileName))

	// 1. 装载文本单元
	units, err := p.loader.Load(path, fileName)
	if err != nil {
		log.Errorf("[Processor] 装载文档失败, FileName: %s, Error: %v", fileName, err)
		return nil, fmt.Errorf("装载文档失败: %w", err)
	}
	if len(units) == 0 {
		log.Warnf("[Processor] 文档 '%s' 未提取到任何文本, 处理中止", fileName)
		return nil, errors.New("提取的文本内容为空")
	}
	log.Infof("[Processor] 步骤1: 装载成功, 共 %d 个文本单元", len(units))

	// 2. 文本切块，并附加来源元数据
	log.Infof("[Processor] 步骤2: 进行文本分块, chunkSize: %d, chunkOverlap: %d", p.ingestCfg.ChunkSize, p.ingestCfg.ChunkOverlap)
	var docs []model.ChunkDocument
	for _, unit := range units {
		pieces := SplitText(unit.Text, p.ingestCfg.ChunkSize, p.ingestCfg.ChunkOverlap)
		for _, piece := range pieces {
			idx := len(docs)
			docs = append(docs, model.ChunkDocument{
				ChunkID:      fmt.Sprintf("%s_%d", fileMD5, idx),
				SourceFile:   fileName,
				FileType:     fileType,
				Page:         unit.Page,
				ChunkIndex:   idx,
				Content:      piece,
				ModelVersion: p.modelVersion,
			})
		}
	}
	if len(docs) == 0 {
		log.Warnf("[Processor] 未生成任何文本分块, 处理中止, FileName: %s", fileName)
		return nil, errors.New("未生成任何文本分块")
	}
	log.Infof("[Processor] 步骤2: 文本分块完成, 共生成 %d 个分块", len(docs))

	// 阶段一：将分块文本和元数据存入数据库（幂等：先清理旧记录）
	if err := p.chunkRepo.DeleteByFileMD5(fileMD5); err != nil {
		log.Warnf("[Processor] 清理 document_chunks 旧记录失败 (file_md5=%s): %v", fileMD5, err)
	}
	dbChunks := make([]*model.DocumentChunk, 0, len(docs))
	for _, doc := range docs {
		dbChunks = append(dbChunks, &model.DocumentChunk{
			FileMD5:     fileMD5,
			SourceFile:  doc.SourceFile,
			FileType:    doc.FileType,
			Page:        doc.Page,
			ChunkIndex:  doc.ChunkIndex,
			TextContent: doc.Content,
		})
	}
	if err := p.chunkRepo.BatchCreate(dbChunks); err != nil {
		log.Errorf("[Processor] 阶段一: 批量保存文本分块到数据库失败, Error: %v", err)
		return nil, fmt.Errorf("批量保存文本分块失败: %w", err)
	}
	log.Infof("[Processor] 阶段一: 成功将 %d 个分块存入数据库", len(dbChunks))

	// 阶段二：批量向量化并写入向量索引
	log.Info("[Processor] 阶段二: 开始批量向量化")
	for i := 0; i < len(docs); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		texts := make([]string, 0, end-i)
		for _, doc := range docs[i:end] {
			texts = append(texts, doc.Content)
		}
		vectors, err := p.embeddingClient.CreateEmbeddingBatch(ctx, texts)
		if err != nil {
			log.Errorf("[Processor] 分块批次 %d-%d 向量化失败, Error: %v", i, end, err)
			return nil, fmt.Errorf("分块向量化失败: %w", err)
		}
		for j := range vectors {
			docs[i+j].Vector = vectors[j]
		}
	}

	ids, err := p.store.Insert(ctx, docs)
	if err != nil {
		log.Errorf("[Processor] 写入向量索引失败, FileName: %s, Error: %v", fileName, err)
		return nil, fmt.Errorf("写入向量索引失败: %w", err)
	}

	log.Infof("[Processor] 文档处理成功完成, FileName: %s, 共索引 %d 个分块", fileName, len(ids))
	return ids, nil
}

// ProcessTask 处理来自 Kafka 的种子导入任务，满足 kafka.TaskProcessor 接口。
func (p *Processor) ProcessTask(ctx context.Context, task tasks.IngestTask) error {
	info, err := os.Stat(task.Path)
	if err != nil {
		return fmt.Errorf("种子文件不可用: %w", err)
	}

	ids, err := p.Process(ctx, task.Path, task.FileName, task.FileMD5)
	if err != nil {
		_ = p.uploadRepo.MarkProcessed(task.FileMD5, model.UploadStatusFailed, 0)
		return err
	}

	upload := &model.DocumentUpload{
		FileMD5:    task.FileMD5,
		FileName:   task.FileName,
		FileType:   strings.ToLower(filepath.Ext(task.FileName)),
		TotalSize:  info.Size(),
		Status:     model.UploadStatusCompleted,
		ChunkCount: len(ids),
	}
	if err := p.uploadRepo.Create(upload); err != nil {
		log.Warnf("[Processor] 保存种子导入记录失败 (file=%s): %v", task.FileName, err)
	}
	if err := p.uploadRepo.MarkProcessed(task.FileMD5, model.UploadStatusCompleted, len(ids)); err != nil {
		log.Warnf("[Processor] 更新种子导入状态失败 (file=%s): %v", task.FileName, err)
	}
	return nil
}

// FileMD5 计算文件内容的 MD5，作为分块 ID 的稳定前缀。
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
