package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edu-game-server/internal/handler"
	serviceMocks "edu-game-server/internal/service/mocks"
	sharedModels "edu-game-server/shared/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupServer(t *testing.T) (*echo.Echo, *serviceMocks.ProgressService, *serviceMocks.SectionService) {
	t.Helper()
	progress := new(serviceMocks.ProgressService)
	sections := new(serviceMocks.SectionService)
	e := echo.New()
	handler.NewGameHandler(progress, sections, zap.NewNop()).RegisterRoutes(e)
	return e, progress, sections
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUpsertProgressHandler(t *testing.T) {
	t.Run("Absent fields stay nil", func(t *testing.T) {
		e, progress, _ := setupServer(t)
		merged := &sharedModels.MergedProgress{
			PlayerProgress:     sharedModels.PlayerProgress{PlayerID: "p1", Coins: 15, CurrentStage: 2, CompletedQuests: 5},
			ProgressPercentage: 20,
		}
		progress.On("UpsertProgress", mock.Anything, "p1", mock.MatchedBy(func(r sharedModels.ProgressReport) bool {
			return r.Coins != nil && *r.Coins == 15 && r.Score == nil && r.CurrentStage == nil
		})).Return(merged, nil).Once()

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"player_id":"p1","coins":15}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(20), body["progress_percentage"])
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(15), data["coins"])
		assert.Contains(t, data, "last_updated")
		progress.AssertExpectations(t)
	})

	t.Run("Missing player id", func(t *testing.T) {
		e, progress, _ := setupServer(t)

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"coins":15}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
		progress.AssertNotCalled(t, "UpsertProgress", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed body", func(t *testing.T) {
		e, _, _ := setupServer(t)

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"player_id":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown player", func(t *testing.T) {
		e, progress, _ := setupServer(t)
		progress.On("UpsertProgress", mock.Anything, "ghost", mock.Anything).Return(nil, sharedModels.ErrPlayerNotFound).Once()

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"player_id":"ghost"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Storage timeout", func(t *testing.T) {
		e, progress, _ := setupServer(t)
		err := fmt.Errorf("%w: upsert progress: %w", sharedModels.ErrStorage, context.DeadlineExceeded)
		progress.On("UpsertProgress", mock.Anything, "p1", mock.Anything).Return(nil, err).Once()

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"player_id":"p1"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Storage error hides cause", func(t *testing.T) {
		e, progress, _ := setupServer(t)
		err := fmt.Errorf("%w: upsert progress: %w", sharedModels.ErrStorage, errors.New("password authentication failed"))
		progress.On("UpsertProgress", mock.Anything, "p1", mock.Anything).Return(nil, err).Once()

		rec := doRequest(e, http.MethodPost, "/api/progress", `{"player_id":"p1"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestGetProgressHandler(t *testing.T) {
	e, progress, _ := setupServer(t)
	progress.On("GetProgress", mock.Anything, "p1").Return(&sharedModels.MergedProgress{
		PlayerProgress: sharedModels.PlayerProgress{PlayerID: "p1", CurrentStage: 1},
	}, nil).Once()

	rec := doRequest(e, http.MethodGet, "/api/progress?player_id=p1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(0), data["progress_percentage"])
	assert.Equal(t, float64(1), data["current_stage"])
}

func TestCompleteQuestHandler(t *testing.T) {
	e, progress, _ := setupServer(t)
	progress.On("CompleteQuest", mock.Anything, "p1", "q1", mock.MatchedBy(func(r sharedModels.QuestReport) bool {
		return r.Completed == nil && *r.ScoreEarned == 10
	})).Return(&sharedModels.QuestCompletion{PlayerID: "p1", QuestID: "q1", IsCompleted: true, ScoreEarned: 10, Attempts: 1}, nil).Once()

	rec := doRequest(e, http.MethodPost, "/api/quests/complete", `{"player_id":"p1","quest_id":"q1","score_earned":10}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["is_completed"])
}

func TestLeaderboardHandler(t *testing.T) {
	e, progress, _ := setupServer(t)
	progress.On("GetLeaderboard", mock.Anything, 100).Return([]sharedModels.LeaderboardEntry{{PlayerID: "p1", Score: 9}}, nil).Once()

	rec := doRequest(e, http.MethodGet, "/api/leaderboard?limit=5000", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	progress.AssertExpectations(t)
}

func TestArchiveSectionHandler(t *testing.T) {
	t.Run("Partial reconciliation returns warnings", func(t *testing.T) {
		e, _, sections := setupServer(t)
		res := &sharedModels.ArchiveResult{TeacherID: "t1", Section: "7A", StudentsArchived: 4, SectionArchived: true}
		res.Writes.Add(sharedModels.StoreOutcome{Store: sharedModels.StoreRoster, Rows: 4})
		res.Writes.Add(sharedModels.StoreOutcome{Store: sharedModels.StoreAssignment, Err: errors.New("lock timeout")})
		res.Writes.Add(sharedModels.StoreOutcome{Store: sharedModels.StoreArchiveLog, Rows: 1})
		sections.On("ArchiveSection", mock.Anything, "t1", "7A").Return(res, nil).Once()

		rec := doRequest(e, http.MethodPost, "/api/sections/archive", `{"teacher_id":"t1","section":"7A"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(4), body["students_archived"])
		assert.Equal(t, true, body["section_archived"])
		warnings := body["warnings"].([]any)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "teacher_sections")
	})

	t.Run("Foreign section", func(t *testing.T) {
		e, _, sections := setupServer(t)
		sections.On("ArchiveSection", mock.Anything, "t2", "7A").Return(nil, sharedModels.ErrPermissionDenied).Once()

		rec := doRequest(e, http.MethodPost, "/api/sections/archive", `{"teacher_id":"t2","section":"7A"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRestoreSectionHandler(t *testing.T) {
	e, _, sections := setupServer(t)
	res := &sharedModels.RestoreResult{TeacherID: "t1", Section: "7A", StudentsRestored: 3}
	res.Writes.Add(sharedModels.StoreOutcome{Store: sharedModels.StoreRoster, Rows: 3})
	sections.On("RestoreSection", mock.Anything, "t1", "7A").Return(res, nil).Once()

	rec := doRequest(e, http.MethodPost, "/api/sections/restore", `{"teacher_id":"t1","section":"7A"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(3), body["students_restored"])
	assert.NotContains(t, body, "warnings")
}

func TestListSectionsHandler(t *testing.T) {
	e, _, sections := setupServer(t)
	opts := sharedModels.ListSectionsOptions{IncludeArchived: true, ArchivedFirst: true}
	sections.On("ListSections", mock.Anything, "t1", opts).Return([]sharedModels.SectionView{
		{Section: "7A", StudentCount: 5, IsArchived: true},
		{Section: "8B", StudentCount: 2},
	}, nil).Once()

	rec := doRequest(e, http.MethodGet, "/api/sections?teacher_id=t1&include_archived=true&order=archived_first", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["sections"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "7A", first["section"])
	assert.Equal(t, true, first["is_archived"])
	sections.AssertExpectations(t)
}

func TestEnrollHandler(t *testing.T) {
	e, _, sections := setupServer(t)
	sections.On("EnrollStudent", mock.Anything, "t1", "7A", "p1").Return(6, nil).Once()

	rec := doRequest(e, http.MethodPost, "/api/sections/enroll", `{"teacher_id":"t1","section":"7A","player_id":"p1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(6), decode(t, rec)["student_count"])
}
