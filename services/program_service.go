package services

import (
	"context"

	"collegeoffice_go/database"
	"collegeoffice_go/models"

	"gorm.io/gorm"
)

// DeleteProgram detaches students, teachers and subjects from the program,
// drops its schedules and then the program itself, all in one transaction.
// It returns gorm.ErrRecordNotFound when no program row was removed.
func DeleteProgram(ctx context.Context, db *database.Database, id uint) error {
	return db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Student{}, &models.Teacher{}, &models.Subject{}} {
			if err := tx.Model(m).Where("program_id = ?", id).Update("program_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("program_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Program{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
