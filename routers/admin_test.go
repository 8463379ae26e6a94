package routers

import (
	"bytes"
	"fmt"
	"io"
	"lexorial/models"
	"lexorial/utils"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(http.MethodGet, "/admin/modules", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	learner := uuid.New()
	require.NoError(t, env.db.Create(&models.Profile{UserID: learner.String(), Role: models.RoleUser}).Error)
	status, _ = env.request(http.MethodGet, "/admin/modules", nil, env.token(learner))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.request(http.MethodGet, "/admin/modules", nil, env.token(uuid.New()))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.request(http.MethodGet, "/admin/modules", nil, env.admin())
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminModuleAndLessonLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()

	status, body := env.request(http.MethodPost, "/admin/modules", map[string]interface{}{"title": "Basics", "level": 2}, tok)
	require.Equal(t, http.StatusCreated, status)
	first := decode[models.Module](t, body)

	status, body = env.request(http.MethodPost, "/admin/modules", map[string]interface{}{"title": "Next"}, tok)
	require.Equal(t, http.StatusCreated, status)
	second := decode[models.Module](t, body)
	require.NotNil(t, second.Level)
	assert.Equal(t, 3, *second.Level)

	status, body = env.request(http.MethodPost, "/admin/modules", map[string]interface{}{"title": "  "}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = env.request(http.MethodPost, "/admin/modules", map[string]interface{}{"title": "Bad", "level": 0}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": first.ID, "title": "One"}, tok)
	require.Equal(t, http.StatusCreated, status)
	lesson := decode[models.Lesson](t, body)
	assert.Equal(t, 1, lesson.OrderIndex)

	status, body = env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": first.ID, "title": "Two"}, tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 2, decode[models.Lesson](t, body).OrderIndex)

	status, _ = env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": first.ID, "title": "Dup", "order_index": 1}, tok)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": 999, "title": "Orphan"}, tok)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.request(http.MethodPut, fmt.Sprintf("/admin/lessons/%d", lesson.ID), map[string]interface{}{"title": "Uno"}, tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Uno", decode[models.Lesson](t, body).Title)

	status, body = env.request(http.MethodGet, "/admin/modules", nil, tok)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Modules []struct {
			ID          uint  `json:"ID"`
			LessonCount int64 `json:"lesson_count"`
		} `json:"modules"`
	}](t, body)
	require.Len(t, list.Modules, 2)
	assert.Equal(t, int64(2), list.Modules[0].LessonCount)

	q := models.Question{LessonID: lesson.ID, QuestionText: "?", QuestionType: models.QuestionTypeMultiple}
	require.NoError(t, env.db.Create(&q).Error)
	require.NoError(t, env.db.Create(&models.QuestionChoice{QuestionID: q.ID, ChoiceText: "a"}).Error)

	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/admin/modules/%d", first.ID), nil, tok)
	require.Equal(t, http.StatusOK, status)

	var lessons, questions, choices int64
	env.db.Unscoped().Model(&models.Lesson{}).Count(&lessons)
	env.db.Unscoped().Model(&models.Question{}).Count(&questions)
	env.db.Unscoped().Model(&models.QuestionChoice{}).Count(&choices)
	assert.Zero(t, lessons)
	assert.Zero(t, questions)
	assert.Zero(t, choices)

	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/admin/modules/%d", first.ID), nil, tok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminQuestionVariants(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	_, lessons := env.seedModule("A", level(1), 1)

	status, body := env.request(http.MethodPost, "/admin/questions", map[string]interface{}{
		"lesson_id":     lessons[0].ID,
		"question_text": "Pick hello",
		"question_type": "multiple",
		"choices": []map[string]interface{}{
			{"choice_text": "Hola", "is_correct": true},
			{"choice_text": "Adios"},
		},
	}, tok)
	require.Equal(t, http.StatusCreated, status)
	q := decode[models.Question](t, body)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, 1, q.Choices[0].OrderIndex)
	assert.True(t, q.Choices[0].IsCorrect)

	status, body = env.request(http.MethodPost, fmt.Sprintf("/admin/questions/%d/choices", q.ID), map[string]interface{}{"choice_text": "Gracias"}, tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 3, decode[models.QuestionChoice](t, body).OrderIndex)

	status, _ = env.request(http.MethodPost, fmt.Sprintf("/admin/questions/%d/long-answers", q.ID), map[string]interface{}{"accepted_answer": "x"}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = env.request(http.MethodPost, "/admin/questions", map[string]interface{}{
		"lesson_id": lessons[0].ID, "question_text": "Essay", "question_type": "long",
		"choices": []map[string]interface{}{{"choice_text": "nope"}},
	}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = env.request(http.MethodPost, "/admin/questions", map[string]interface{}{
		"lesson_id": lessons[0].ID, "question_text": "Essay", "question_type": "matching",
	}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body.Data), "question_type")

	// switching to long drops the choices
	status, body = env.request(http.MethodPut, fmt.Sprintf("/admin/questions/%d", q.ID), map[string]interface{}{
		"question_type": "long",
		"long_answers":  []map[string]interface{}{{"accepted_answer": "hello"}},
	}, tok)
	require.Equal(t, http.StatusOK, status)
	updated := decode[models.Question](t, body)
	assert.Equal(t, models.QuestionTypeLong, updated.QuestionType)
	assert.Empty(t, updated.Choices)
	require.Len(t, updated.LongAnswers, 1)

	status, _ = env.request(http.MethodPut, fmt.Sprintf("/admin/long-answers/%d", updated.LongAnswers[0].ID), map[string]interface{}{"accepted_answer": "hi"}, tok)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/admin/questions/%d", q.ID), nil, tok)
	require.Equal(t, http.StatusOK, status)
	var answers int64
	env.db.Unscoped().Model(&models.QuestionLongAnswer{}).Count(&answers)
	assert.Zero(t, answers)
}

type fakeStorage struct {
	mu       sync.Mutex
	uploaded []string
	removed  []string
}

func (f *fakeStorage) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		path := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/lesson-slides/")
		switch r.Method {
		case http.MethodPost:
			io.Copy(io.Discard, r.Body)
			f.uploaded = append(f.uploaded, path)
		case http.MethodDelete:
			f.removed = append(f.removed, path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})
}

func slideRequest(t *testing.T, lessonID uint, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("lesson_id", fmt.Sprint(lessonID)))
	require.NoError(t, w.WriteField("video_url", "https://video.example/v"))
	part, err := w.CreateFormFile("slide_file", filename)
	require.NoError(t, err)
	part.Write(data)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/admin/lesson-content", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAdminLessonContentUpdate(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	_, lessons := env.seedModule("A", level(1), 1)
	lessonID := lessons[0].ID

	status, _ := env.request(http.MethodPut, "/admin/lesson-content", map[string]interface{}{
		"lesson_id":      lessonID,
		"video_url":      "https://video.example/a",
		"flashcard_url": "https://cards.example/deck",
	}, tok)
	require.Equal(t, http.StatusOK, status)

	var card models.Flashcard
	require.NoError(t, env.db.Where("lesson_id = ?", lessonID).First(&card).Error)
	assert.Equal(t, models.FlashcardLinkWord, card.Word)
	assert.Equal(t, "https://cards.example/deck", card.Translation)

	status, _ = env.request(http.MethodPut, "/admin/lesson-content", map[string]interface{}{"lesson_id": lessonID, "video_url": "not a url"}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	// no storage configured
	status, _ = env.do(slideRequest(t, lessonID, "deck.pdf", pdf), tok)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	store := &fakeStorage{}
	srv := httptest.NewServer(store.handler())
	defer srv.Close()
	utils.Storage = utils.NewStorageClient(srv.URL, "key", "lesson-slides")

	status, _ = env.do(slideRequest(t, lessonID, "deck.pdf", pdf), tok)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(slideRequest(t, lessonID, "deck2.pdf", pdf), tok)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, store.uploaded, 2)
	assert.True(t, strings.HasPrefix(store.uploaded[0], fmt.Sprintf("lesson-%d/", lessonID)))
	assert.Equal(t, []string{store.uploaded[0]}, store.removed)

	var slide models.Slide
	require.NoError(t, env.db.Where("lesson_id = ?", lessonID).First(&slide).Error)
	assert.Equal(t, store.uploaded[1], slide.FilePath)
	assert.Equal(t, "lesson-slides", slide.Bucket)

	var video models.Video
	require.NoError(t, env.db.Where("lesson_id = ?", lessonID).First(&video).Error)
	assert.Equal(t, "https://video.example/v", video.VideoURL)

	status, body := env.do(slideRequest(t, lessonID, "notes.txt", []byte("plain text notes")), tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body.Data), "slide_file")
	assert.Len(t, store.uploaded, 2)

	// empty link removes the flashcard
	status, _ = env.request(http.MethodPut, "/admin/lesson-content", map[string]interface{}{"lesson_id": lessonID, "flashcard_url": ""}, tok)
	require.Equal(t, http.StatusOK, status)
	var cards int64
	env.db.Unscoped().Model(&models.Flashcard{}).Count(&cards)
	assert.Zero(t, cards)
}

func TestAdminDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	env.seedModule("A", level(1), 1)
	env.seedModule("B", level(2), 2)

	learner := uuid.New()
	status, _ := env.request(http.MethodPost, "/api/progress", map[string]int{"total_lessons_in_module": 1}, env.token(learner))
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(http.MethodGet, "/admin/dashboard/stats", nil, tok)
	require.Equal(t, http.StatusOK, status)
	stats := decode[struct {
		Totals struct {
			Modules  int64 `json:"modules"`
			Lessons  int64 `json:"lessons"`
			Learners int64 `json:"learners"`
		} `json:"totals"`
		LearnersPerLevel []struct {
			Level    int   `json:"level"`
			Learners int64 `json:"learners"`
		} `json:"learners_per_level"`
		Today struct {
			Completions int64 `json:"completions"`
			LevelUps    int64 `json:"level_ups"`
		} `json:"today"`
	}](t, body)

	assert.Equal(t, int64(2), stats.Totals.Modules)
	assert.Equal(t, int64(3), stats.Totals.Lessons)
	assert.Equal(t, int64(1), stats.Totals.Learners)
	require.Len(t, stats.LearnersPerLevel, 1)
	assert.Equal(t, 2, stats.LearnersPerLevel[0].Level)
	assert.Equal(t, int64(1), stats.Today.Completions)
	assert.Equal(t, int64(1), stats.Today.LevelUps)

	status, body = env.request(http.MethodGet, fmt.Sprintf("/admin/learners/%s/progress", learner), nil, tok)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"level":2`)
}

func TestDeletingLessonKeepsFrontierReachable(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	m, lessons := env.seedModule("A", level(1), 3)
	env.seedModule("B", level(2), 1)
	user := uuid.New()
	learner := env.token(user)

	status, _ := env.request(http.MethodPost, "/api/progress", map[string]interface{}{
		"total_lessons_in_module": 3, "lesson_id": lessons[0].ID,
	}, learner)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/admin/lessons/%d", lessons[1].ID), nil, tok)
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(http.MethodGet, fmt.Sprintf("/api/lessons?moduleId=%d", m.ID), nil, learner)
	require.Equal(t, http.StatusOK, status)
	data := decode[struct {
		Lessons []lessonItem `json:"lessons"`
	}](t, body)
	require.Len(t, data.Lessons, 2)
	assert.Equal(t, lessonItem{ID: lessons[0].ID, OrderIndex: 1, IsUnlocked: true, Completed: true}, data.Lessons[0])
	assert.Equal(t, lessonItem{ID: lessons[2].ID, OrderIndex: 2, IsUnlocked: true, Completed: false}, data.Lessons[1])

	status, _ = env.request(http.MethodGet, fmt.Sprintf("/api/lesson-content?lesson_id=%d", lessons[2].ID), nil, learner)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.request(http.MethodPost, "/api/progress", map[string]interface{}{
		"total_lessons_in_module": 2, "lesson_id": lessons[2].ID,
	}, learner)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"leveled_up":true`)
}

func TestLessonOrderStaysContiguous(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	a, lessons := env.seedModule("A", level(1), 3)
	b, _ := env.seedModule("B", level(2), 1)

	status, body := env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": a.ID, "title": "Far", "order_index": 7}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body.Data), "order_index")

	status, _ = env.request(http.MethodPut, fmt.Sprintf("/admin/lessons/%d", lessons[0].ID), map[string]interface{}{"order_index": 4}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// taking a used slot in the same module swaps the two lessons
	status, body = env.request(http.MethodPut, fmt.Sprintf("/admin/lessons/%d", lessons[0].ID), map[string]interface{}{"order_index": 3}, tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decode[models.Lesson](t, body).OrderIndex)
	var swapped models.Lesson
	require.NoError(t, env.db.First(&swapped, lessons[2].ID).Error)
	assert.Equal(t, 1, swapped.OrderIndex)

	// moving to another module appends there and closes the gap left behind
	status, body = env.request(http.MethodPut, fmt.Sprintf("/admin/lessons/%d", lessons[1].ID), map[string]interface{}{"module_id": b.ID}, tok)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decode[models.Lesson](t, body).OrderIndex)

	var remaining []models.Lesson
	require.NoError(t, env.db.Where("module_id = ?", a.ID).Order("order_index asc").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, []int{1, 2}, []int{remaining[0].OrderIndex, remaining[1].OrderIndex})
	assert.Equal(t, []uint{lessons[2].ID, lessons[0].ID}, []uint{remaining[0].ID, remaining[1].ID})
}

func TestAdminHandlersReportDatabaseErrors(t *testing.T) {
	env := newTestEnv(t)
	tok := env.admin()
	m, _ := env.seedModule("A", level(1), 1)

	require.NoError(t, env.db.Migrator().DropTable(&models.ProgressEvent{}))
	status, _ := env.request(http.MethodGet, "/admin/dashboard/stats", nil, tok)
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = env.request(http.MethodGet, fmt.Sprintf("/admin/learners/%s/progress", uuid.New()), nil, tok)
	assert.Equal(t, http.StatusInternalServerError, status)

	require.NoError(t, env.db.Migrator().DropTable(&models.Lesson{}))
	status, _ = env.request(http.MethodPost, "/admin/lessons", map[string]interface{}{"module_id": m.ID, "title": "Two"}, tok)
	assert.Equal(t, http.StatusInternalServerError, status)

	status, _ = env.request(http.MethodGet, "/admin/modules", nil, tok)
	assert.Equal(t, http.StatusInternalServerError, status)
}
