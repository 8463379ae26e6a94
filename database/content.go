package database

import (
	"context"
	"errors"
	"lexorial/models"
	"lexorial/progression"

	"gorm.io/gorm"
)

// OrderedModules returns every module in display order
func OrderedModules(ctx context.Context, db *gorm.DB) ([]models.Module, error) {
	var modules []models.Module
	err := db.WithContext(ctx).Order(models.ModuleOrder).Find(&modules).Error
	return modules, err
}

// ModuleLevelPointers extracts the stored levels in the same order
func ModuleLevelPointers(modules []models.Module) []*int {
	levels := make([]*int, len(modules))
	for i := range modules {
		levels[i] = modules[i].Level
	}
	return levels
}

// ResolvedModuleLevel returns the effective level of the module with the
// given id, applying the positional fallback.
func ResolvedModuleLevel(ctx context.Context, db *gorm.DB, moduleID uint) (int, error) {
	modules, err := OrderedModules(ctx, db)
	if err != nil {
		return 0, err
	}
	levels := progression.ModuleLevels(ModuleLevelPointers(modules))
	for i, m := range modules {
		if m.ID == moduleID {
			return levels[i], nil
		}
	}
	return 0, progression.ErrNotFound
}

// CurrentModule finds the first module whose effective level equals level and
// counts its lessons. No such module gives progression.ErrNotFound.
func CurrentModule(ctx context.Context, db *gorm.DB, level int) (models.Module, int, error) {
	modules, err := OrderedModules(ctx, db)
	if err != nil {
		return models.Module{}, 0, err
	}
	levels := progression.ModuleLevels(ModuleLevelPointers(modules))
	for i, m := range modules {
		if levels[i] != level {
			continue
		}
		var count int64
		if err := db.WithContext(ctx).Model(&models.Lesson{}).Where("module_id = ?", m.ID).Count(&count).Error; err != nil {
			return models.Module{}, 0, err
		}
		return m, int(count), nil
	}
	return models.Module{}, 0, progression.ErrNotFound
}

// LevelTotals maps each effective level to the lesson count of the first
// module at that level.
func LevelTotals(ctx context.Context, db *gorm.DB) (map[int]int, error) {
	modules, err := OrderedModules(ctx, db)
	if err != nil {
		return nil, err
	}

	var counts []struct {
		ModuleID uint
		Total    int
	}
	if err := db.WithContext(ctx).Model(&models.Lesson{}).
		Select("module_id, COUNT(*) AS total").
		Group("module_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byModule := make(map[uint]int, len(counts))
	for _, c := range counts {
		byModule[c.ModuleID] = c.Total
	}

	levels := progression.ModuleLevels(ModuleLevelPointers(modules))
	totals := make(map[int]int, len(modules))
	for i, m := range modules {
		if _, seen := totals[levels[i]]; seen {
			continue
		}
		totals[levels[i]] = byModule[m.ID]
	}
	return totals, nil
}

// IsNotFound reports whether err means a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, progression.ErrNotFound)
}

// LessonContent is a lesson with everything attached to it
type LessonContent struct {
	Lesson    models.Lesson     `json:"lesson"`
	Video     *models.Video     `json:"video"`
	Slide     *models.Slide     `json:"slide"`
	Flashcard *models.Flashcard `json:"flashcard"`
	Questions []models.Question `json:"questions"`
}

// LoadLessonContent aggregates a lesson's video, slide, flashcard and
// questions with their choices and accepted answers.
func LoadLessonContent(ctx context.Context, db *gorm.DB, lessonID uint) (LessonContent, error) {
	db = db.WithContext(ctx)

	var out LessonContent
	if err := db.First(&out.Lesson, lessonID).Error; err != nil {
		return out, err
	}

	var err error
	if out.Video, err = optional[models.Video](db, lessonID); err != nil {
		return out, err
	}
	if out.Slide, err = optional[models.Slide](db, lessonID); err != nil {
		return out, err
	}
	if out.Flashcard, err = optional[models.Flashcard](db, lessonID); err != nil {
		return out, err
	}

	err = db.Where("lesson_id = ?", lessonID).
		Preload("Choices", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("LongAnswers", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Order("order_index asc, id asc").
		Find(&out.Questions).Error
	if err != nil {
		return out, err
	}
	return out, nil
}

// optional loads the row of T attached to a lesson, nil when there is none
func optional[T any](db *gorm.DB, lessonID uint) (*T, error) {
	var row T
	err := db.Where("lesson_id = ?", lessonID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteLessonsCascade hard deletes lessons and everything attached to them
func DeleteLessonsCascade(tx *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	var questionIDs []uint
	if err := tx.Model(&models.Question{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.QuestionChoice{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.QuestionLongAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
	}

	for _, model := range []interface{}{&models.Video{}, &models.Slide{}, &models.Flashcard{}} {
		if err := tx.Unscoped().Where("lesson_id IN ?", lessonIDs).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Unscoped().Where("id IN ?", lessonIDs).Delete(&models.Lesson{}).Error
}

// RenumberLessons closes gaps in a module's order indexes so they run 1..n in
// their current order. Lesson unlocking relies on contiguous indexes.
func RenumberLessons(tx *gorm.DB, moduleID uint) error {
	var lessons []models.Lesson
	if err := tx.Where("module_id = ?", moduleID).Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return err
	}
	// ascending order keeps every target slot free under the unique index
	for i, l := range lessons {
		if l.OrderIndex == i+1 {
			continue
		}
		if err := tx.Model(&models.Lesson{}).Where("id = ?", l.ID).Update("order_index", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountLessons returns the number of lessons in a module
func CountLessons(tx *gorm.DB, moduleID uint) (int, error) {
	var count int64
	err := tx.Model(&models.Lesson{}).Where("module_id = ?", moduleID).Count(&count).Error
	return int(count), err
}
