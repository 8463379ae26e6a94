package controllers

import (
	"errors"
	"lexorial/config"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/utils"
	adminValidator "lexorial/validators/admin"
	"log"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminGetLessonContent returns a lesson's full content including correct
// choices and accepted answers
func AdminGetLessonContent(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	content, err := database.LoadLessonContent(c.UserContext(), database.Database.Db, lessonID)
	if err != nil {
		if database.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		log.Printf("Failed to load content of lesson %d: %v", lessonID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson content fetched successfully!", content)
}

type uploadedSlide struct {
	path string
	url  string
}

// uploadSlide validates and stores a slide file. On failure it returns the
// HTTP status to answer with.
func uploadSlide(c *fiber.Ctx, lessonID uint, file *multipart.FileHeader) (*uploadedSlide, int, error) {
	if utils.Storage == nil {
		return nil, fiber.StatusServiceUnavailable, errors.New("Slide storage is not configured!")
	}

	maxBytes := int64(config.AppConfig.MaxUploadMB) * 1024 * 1024
	data, contentType, err := utils.ReadSlide(file, maxBytes)
	if err != nil {
		if errors.Is(err, utils.ErrSlideTooLarge) || errors.Is(err, utils.ErrSlideType) {
			return nil, fiber.StatusUnprocessableEntity, err
		}
		return nil, fiber.StatusBadRequest, errors.New("Could not read slide file!")
	}

	path := utils.SlidePath(lessonID, file.Filename, time.Now())
	url, err := utils.Storage.Upload(c.UserContext(), path, contentType, data)
	if err != nil {
		log.Printf("Slide upload failed for lesson %d: %v", lessonID, err)
		return nil, fiber.StatusBadGateway, errors.New("Failed to upload slide!")
	}
	return &uploadedSlide{path: path, url: url}, fiber.StatusOK, nil
}

// AdminUpdateLessonContent sets a lesson's video link, flashcard link and
// slide file. Replacing a slide removes the previous object from storage.
func AdminUpdateLessonContent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db.WithContext(ctx)

	reqData, ok := c.Locals("validatedLessonContent").(*adminValidator.LessonContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson models.Lesson
	if err := db.First(&lesson, reqData.LessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var slide *uploadedSlide
	if file, ok := c.Locals("slideFile").(*multipart.FileHeader); ok {
		var status int
		var err error
		if slide, status, err = uploadSlide(c, lesson.ID, file); err != nil {
			if status == fiber.StatusUnprocessableEntity {
				return middleware.ValidationErrorResponse(c, map[string]string{"slide_file": err.Error()})
			}
			return middleware.JsonResponse(c, status, false, err.Error(), nil)
		}
	}

	var oldSlidePath string
	err := db.Transaction(func(tx *gorm.DB) error {
		if reqData.VideoURL != nil {
			if err := upsertVideo(tx, lesson.ID, *reqData.VideoURL); err != nil {
				return err
			}
		}
		if reqData.FlashcardURL != nil {
			if err := upsertFlashcardLink(tx, lesson.ID, *reqData.FlashcardURL); err != nil {
				return err
			}
		}
		if slide != nil {
			var row models.Slide
			err := tx.Where("lesson_id = ?", lesson.ID).Take(&row).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			oldSlidePath = row.FilePath
			row.LessonID = lesson.ID
			row.SlideURL = slide.url
			row.Bucket = utils.Storage.Bucket()
			row.FilePath = slide.path
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to update content of lesson %d: %v", lesson.ID, err)
		if slide != nil {
			if rmErr := utils.Storage.Remove(ctx, slide.path); rmErr != nil {
				log.Printf("Failed to remove orphaned slide %s: %v", slide.path, rmErr)
			}
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson content!", nil)
	}

	if slide != nil && oldSlidePath != "" && oldSlidePath != slide.path {
		if err := utils.Storage.Remove(ctx, oldSlidePath); err != nil {
			log.Printf("Failed to remove previous slide %s: %v", oldSlidePath, err)
		}
	}

	content, err := database.LoadLessonContent(ctx, database.Database.Db, lesson.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson content!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson content updated successfully!", content)
}

// upsertVideo sets the lesson's video link. An empty URL removes it.
func upsertVideo(tx *gorm.DB, lessonID uint, videoURL string) error {
	if videoURL == "" {
		return tx.Unscoped().Where("lesson_id = ?", lessonID).Delete(&models.Video{}).Error
	}
	var row models.Video
	err := tx.Where("lesson_id = ?", lessonID).Take(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	row.LessonID = lessonID
	row.VideoURL = videoURL
	return tx.Save(&row).Error
}

// upsertFlashcardLink sets the lesson's flashcard link. An empty URL removes it.
func upsertFlashcardLink(tx *gorm.DB, lessonID uint, link string) error {
	if link == "" {
		return tx.Unscoped().Where("lesson_id = ?", lessonID).Delete(&models.Flashcard{}).Error
	}
	var row models.Flashcard
	err := tx.Where("lesson_id = ?", lessonID).Take(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	row.LessonID = lessonID
	row.Word = models.FlashcardLinkWord
	row.Translation = link
	return tx.Save(&row).Error
}
