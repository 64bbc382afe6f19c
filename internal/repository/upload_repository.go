package repository

import (
	"errors"
	"time"

	"legal-nav-go/internal/model"

	"gorm.io/gorm"
)

// UploadRepository 定义了对 document_uploads 表的数据操作接口。
type UploadRepository interface {
	Create(upload *model.DocumentUpload) error
	FindByMD5(fileMD5 string) (*model.DocumentUpload, error)
	FindByFileName(fileName string) (*model.DocumentUpload, error)
	MarkProcessed(fileMD5 string, status, chunkCount int) error
	DeleteAll() error
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository 创建一个新的 UploadRepository 实例。
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// Create 创建一条上传记录。同一文件重复上传时复用已有记录。
func (r *uploadRepository) Create(upload *model.DocumentUpload) error {
	existing, err := r.FindByMD5(upload.FileMD5)
	if err != nil {
		return err
	}
	if existing != nil {
		upload.ID = existing.ID
		return r.db.Save(upload).Error
	}
	return r.db.Create(upload).Error
}

// FindByMD5 根据文件MD5查找上传记录，未找到时返回 nil 而非错误。
func (r *uploadRepository) FindByMD5(fileMD5 string) (*model.DocumentUpload, error) {
	var upload model.DocumentUpload
	err := r.db.Where("file_md5 = ?", fileMD5).First(&upload).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// FindByFileName 根据文件名查找上传记录，未找到时返回 nil 而非错误。
func (r *uploadRepository) FindByFileName(fileName string) (*model.DocumentUpload, error) {
	var upload model.DocumentUpload
	err := r.db.Where("file_name = ?", fileName).First(&upload).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// MarkProcessed 更新上传记录的处理状态与分块数量。
func (r *uploadRepository) MarkProcessed(fileMD5 string, status, chunkCount int) error {
	now := time.Now()
	return r.db.Model(&model.DocumentUpload{}).
		Where("file_md5 = ?", fileMD5).
		Updates(map[string]interface{}{
			"status":       status,
			"chunk_count":  chunkCount,
			"processed_at": &now,
		}).Error
}

// DeleteAll 删除全部上传记录。
func (r *uploadRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&model.DocumentUpload{}).Error
}
