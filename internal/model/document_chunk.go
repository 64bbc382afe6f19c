package model

// DocumentChunk 对应于数据库中的 document_chunks 表。
// 接入管线的阶段一会先把分块文本落库，再向量化写入 Elasticsearch，
// 以便向量索引被清空后仍可追溯原始分块。
type DocumentChunk struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FileMD5     string `gorm:"type:varchar(32);not null;index;column:file_md5" json:"fileMd5"`
	SourceFile  string `gorm:"type:varchar(255);not null;index;column:source_file" json:"sourceFile"`
	FileType    string `gorm:"type:varchar(16);not null;column:file_type" json:"fileType"`
	Page        int    `gorm:"not null;default:1" json:"page"`
	ChunkIndex  int    `gorm:"not null;column:chunk_index" json:"chunkIndex"`
	TextContent string `gorm:"type:text;column:text_content" json:"textContent"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentChunk) TableName() string {
	return "document_chunks"
}
