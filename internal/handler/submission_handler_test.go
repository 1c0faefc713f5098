package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judge-go-api/internal/dto"
	"github.com/noah-isme/judge-go-api/internal/handler"
	"github.com/noah-isme/judge-go-api/internal/service"
)

func newSubmissionApp(svc *mockJudgeService) *fiber.App {
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	app := fiber.New()
	handler.NewSubmissionHandler(svc, validate, logger).Register(app.Group("/api/v1/submissions"))
	return app
}

func TestSubmissionHandler_GetSuccess(t *testing.T) {
	svc := &mockJudgeService{
		getResponse: dto.SubmissionResponse{
			ID:           12,
			Language:     "python",
			Status:       "completed",
			FinalVerdict: "ACCEPTED",
			Grade:        "A",
			Passed:       true,
			CreatedAt:    time.Now(),
		},
	}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/12", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "submission retrieved", response.Message)
	require.Equal(t, uint(12), response.Data.ID)
	require.Equal(t, "ACCEPTED", response.Data.FinalVerdict)
	require.Equal(t, uint(12), svc.lastID)
}

func TestSubmissionHandler_GetNotFound(t *testing.T) {
	svc := &mockJudgeService{getErr: service.ErrSubmissionNotFound}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/404", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Equal(t, "submission not found", response.Message)
}

func TestSubmissionHandler_GetInvalidID(t *testing.T) {
	svc := &mockJudgeService{}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Equal(t, "invalid identifier", response.Message)
}

func TestSubmissionHandler_ListWithFilters(t *testing.T) {
	svc := &mockJudgeService{
		listResponse: dto.SubmissionListResponse{
			Items: []dto.SubmissionResponse{
				{ID: 3, Language: "python", FinalVerdict: "PARTIAL"},
				{ID: 2, Language: "python", FinalVerdict: "ACCEPTED"},
			},
			Total: 9,
		},
	}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?language=python&verdict=PARTIAL&limit=2&offset=4", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                       `json:"success"`
		Data    dto.SubmissionListResponse `json:"data"`
		Message string                     `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "submissions retrieved", response.Message)
	require.Len(t, response.Data.Items, 2)
	require.Equal(t, int64(9), response.Data.Total)

	require.NotNil(t, svc.lastQuery.Language)
	require.Equal(t, "python", *svc.lastQuery.Language)
	require.NotNil(t, svc.lastQuery.Verdict)
	require.Equal(t, "PARTIAL", *svc.lastQuery.Verdict)
	require.Equal(t, 2, svc.lastQuery.Limit)
	require.Equal(t, 4, svc.lastQuery.Offset)
	require.Nil(t, svc.lastQuery.Status)
}

func TestSubmissionHandler_ListInvalidLimit(t *testing.T) {
	svc := &mockJudgeService{}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?limit=ten", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
