package model

import "time"

// 上传记录状态。
const (
	UploadStatusProcessing = 0
	UploadStatusCompleted  = 1
	UploadStatusFailed     = 2
)

// DocumentUpload 定义了 document_uploads 表的 ORM 模型。
// 它记录了每个上传文档的元数据与处理状态。
type DocumentUpload struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileMD5     string    `gorm:"type:varchar(32);not null;index" json:"fileMd5"`
	FileName    string    `gorm:"type:varchar(255);not null;index" json:"fileName"`
	FileType    string    `gorm:"type:varchar(16);not null" json:"fileType"`
	TotalSize   int64     `gorm:"not null" json:"totalSize"`
	Status      int       `gorm:"type:tinyint;not null;default:0" json:"status"`
	ChunkCount  int       `gorm:"not null;default:0" json:"chunkCount"`
	ObjectName  string    `gorm:"type:varchar(255)" json:"objectName"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	ProcessedAt *time.Time `gorm:"default:null" json:"processedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentUpload) TableName() string {
	return "document_uploads"
}
