package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/model"
)

// ProspectusRepository 课程计划数据访问接口
type ProspectusRepository interface {
	List(ctx context.Context) ([]model.ProspectusCourse, error)
	ListByProgram(ctx context.Context, programCode string) ([]model.ProspectusCourse, error)
	// ReplacePrograms 在事务中全量替换指定专业的课程计划：先删除旧数据，再批量插入新数据
	ReplacePrograms(ctx context.Context, programCodes []string, courses []model.ProspectusCourse) error
}

type prospectusRepo struct {
	db *gorm.DB
}

// NewProspectusRepo 创建 ProspectusRepository 实例
func NewProspectusRepo(db *gorm.DB) ProspectusRepository {
	return &prospectusRepo{db: db}
}

func (r *prospectusRepo) List(ctx context.Context) ([]model.ProspectusCourse, error) {
	var courses []model.ProspectusCourse
	err := r.db.WithContext(ctx).
		Order("program_code ASC, year_level ASC, semester ASC, created_at ASC").
		Find(&courses).Error
	return courses, err
}

func (r *prospectusRepo) ListByProgram(ctx context.Context, programCode string) ([]model.ProspectusCourse, error) {
	var courses []model.ProspectusCourse
	err := r.db.WithContext(ctx).
		Where("program_code = ?", programCode).
		Order("year_level ASC, semester ASC, created_at ASC").
		Find(&courses).Error
	return courses, err
}

func (r *prospectusRepo) ReplacePrograms(ctx context.Context, programCodes []string, courses []model.ProspectusCourse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 硬删除旧课程计划（替换场景，无需软删除审计）
		if len(programCodes) > 0 {
			if err := tx.Unscoped().Where("program_code IN ?", programCodes).
				Delete(&model.ProspectusCourse{}).Error; err != nil {
				return err
			}
		}
		if len(courses) > 0 {
			if err := tx.CreateInBatches(&courses, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
