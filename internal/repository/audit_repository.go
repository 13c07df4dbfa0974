package repository

import (
	"gorm.io/gorm"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

// AuditFilter narrows the decision listing. Zero values mean "no filter".
type AuditFilter struct {
	Subject string
	Module  string
	Allowed *bool
}

type AuditRepository interface {
	CreateBatch(decisions []domain.AccessDecision) error
	List(filter AuditFilter, page PageRequest) (PageResult[domain.AccessDecision], error)
}

type GormAuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &GormAuditRepository{db: db} }

func (r *GormAuditRepository) CreateBatch(decisions []domain.AccessDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	return r.db.Create(&decisions).Error
}

func (r *GormAuditRepository) List(filter AuditFilter, page PageRequest) (PageResult[domain.AccessDecision], error) {
	page = page.Normalized()

	query := r.db.Model(&domain.AccessDecision{})
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}
	if filter.Allowed != nil {
		query = query.Where("allowed = ?", *filter.Allowed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PageResult[domain.AccessDecision]{}, err
	}

	var items []domain.AccessDecision
	err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&items).Error
	if err != nil {
		return PageResult[domain.AccessDecision]{}, err
	}

	return NewPageResult(items, page, total), nil
}
