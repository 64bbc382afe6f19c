// Package model 定义了服务内部与存储层共用的数据结构。
package model

// 元数据必备键名，与接入管线写入的字段一一对应。
const (
	MetaSourceFile = "source_file"
	MetaFileType   = "file_type"
	MetaPage       = "page"
)

// ChunkDocument 代表存储在 Elasticsearch 向量索引中的文档分块。
// ChunkID 在插入时由接入管线分配（fileMD5_序号），此后不可变。
type ChunkDocument struct {
	ChunkID      string    `json:"chunk_id"`
	SourceFile   string    `json:"source_file"`
	FileType     string    `json:"file_type"`
	Page         int       `json:"page"` // PDF 为 1 起始页码；DOCX/TXT 恒为 1
	ChunkIndex   int       `json:"chunk_index"`
	Content      string    `json:"content"`
	Vector       []float32 `json:"vector,omitempty"`
	ModelVersion string    `json:"model_version"`
}

// Metadata 以键值映射的形式返回分块的元数据。
func (d ChunkDocument) Metadata() map[string]interface{} {
	return map[string]interface{}{
		MetaSourceFile: d.SourceFile,
		MetaFileType:   d.FileType,
		MetaPage:       d.Page,
		"chunk_index":  d.ChunkIndex,
	}
}

// ScoredChunk 是一次检索命中的分块及其距离。
// Distance 为非负实数，越小越相似；仅在单次查询内存在，不做持久化。
type ScoredChunk struct {
	Doc      ChunkDocument
	Distance float64
}
