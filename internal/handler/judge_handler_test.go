package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/judge-go-api/internal/dto"
	"github.com/noah-isme/judge-go-api/internal/handler"
	"github.com/noah-isme/judge-go-api/pkg/judge"
)

type mockJudgeService struct {
	lastPayload   dto.JudgeRequest
	lastID        uint
	lastQuery     dto.SubmissionQuery
	judgeResponse dto.JudgeResponse
	judgeErr      error
	getResponse   dto.SubmissionResponse
	getErr        error
	listResponse  dto.SubmissionListResponse
	listErr       error
	languages     []dto.LanguageResponse
}

func (m *mockJudgeService) Judge(_ context.Context, payload dto.JudgeRequest) (dto.JudgeResponse, error) {
	m.lastPayload = payload
	if m.judgeErr != nil {
		return dto.JudgeResponse{}, m.judgeErr
	}
	return m.judgeResponse, nil
}

func (m *mockJudgeService) GetSubmission(_ context.Context, id uint) (dto.SubmissionResponse, error) {
	m.lastID = id
	if m.getErr != nil {
		return dto.SubmissionResponse{}, m.getErr
	}
	return m.getResponse, nil
}

func (m *mockJudgeService) ListSubmissions(_ context.Context, query dto.SubmissionQuery) (dto.SubmissionListResponse, error) {
	m.lastQuery = query
	if m.listErr != nil {
		return dto.SubmissionListResponse{}, m.listErr
	}
	return m.listResponse, nil
}

func (m *mockJudgeService) Languages() []dto.LanguageResponse {
	return m.languages
}

func newJudgeApp(svc *mockJudgeService) *fiber.App {
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	app := fiber.New()
	handler.NewJudgeHandler(svc, validate, logger).Register(app.Group("/api/v1/judge"))
	return app
}

func judgeRequestBody(t *testing.T) []byte {
	t.Helper()
	payload := dto.JudgeRequest{
		Language: "python",
		Code:     "def add(a, b):\n    return a + b\n",
		TestCases: []dto.TestCaseRequest{
			{Input: "1\n2", ExpectedOutput: "3"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestJudgeHandler_Success(t *testing.T) {
	svc := &mockJudgeService{
		judgeResponse: dto.JudgeResponse{
			SubmissionID: 7,
			OverallScore: 96,
			Grade:        "A+",
			PassStatus:   "PASS",
			Execution: dto.ExecutionResultsResponse{
				CorrectnessScore: 100,
				PassedTests:      1,
				TotalTests:       1,
				FinalVerdict:     "ACCEPTED",
			},
		},
	}
	app := newJudgeApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/judge", bytes.NewReader(judgeRequestBody(t)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.JudgeResponse `json:"data"`
		Message string            `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "submission judged", response.Message)
	require.Equal(t, uint(7), response.Data.SubmissionID)
	require.Equal(t, "A+", response.Data.Grade)
	require.Equal(t, 1, response.Data.Execution.PassedTests)
	require.Equal(t, "python", svc.lastPayload.Language)
}

func TestJudgeHandler_InvalidBody(t *testing.T) {
	svc := &mockJudgeService{}
	app := newJudgeApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/judge", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Equal(t, "invalid request body", response.Message)
	require.Empty(t, svc.lastPayload.Language)
}

func TestJudgeHandler_ValidationFailure(t *testing.T) {
	svc := &mockJudgeService{}
	app := newJudgeApp(svc)

	payload := map[string]interface{}{"language": "python", "code": "print(1)"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/judge", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, svc.lastPayload.Language)
}

func TestJudgeHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{name: "unsupported language", err: judge.ErrUnsupportedLanguage, statusCode: fiber.StatusBadRequest, message: "language not supported"},
		{name: "invalid submission", err: judge.ErrInvalidSubmission, statusCode: fiber.StatusBadRequest},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError, message: "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockJudgeService{judgeErr: tc.err}
			app := newJudgeApp(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/judge", bytes.NewReader(judgeRequestBody(t)))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)

			if tc.message != "" {
				var response struct {
					Success bool   `json:"success"`
					Message string `json:"message"`
				}
				decodeResponse(t, resp, &response)
				require.False(t, response.Success)
				require.Equal(t, tc.message, response.Message)
			}
		})
	}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}
