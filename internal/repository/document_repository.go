// Package repository 封装了文档目录库与问答缓存的数据访问。
package repository

import (
	"gorm.io/gorm"

	"rag-system-go/internal/model"
)

// DocumentRepository 定义了对 documents 目录表的数据操作接口。
// 目录表保证文档列表的完整性，不依赖向量库的元数据扫描。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByID(id string) (*model.Document, error)
	List(offset, limit int) ([]*model.Document, int64, error)
	DeleteByID(id string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 写入一条上传记录。
func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// FindByID 按文档 ID 查找目录记录，不存在时返回 gorm.ErrRecordNotFound。
func (r *documentRepository) FindByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List 按上传时间倒序返回一页目录记录及总数。
func (r *documentRepository) List(offset, limit int) ([]*model.Document, int64, error) {
	var total int64
	if err := r.db.Model(&model.Document{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []*model.Document
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// DeleteByID 删除一条目录记录。
func (r *documentRepository) DeleteByID(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Document{}).Error
}
