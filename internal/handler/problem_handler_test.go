package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/handler"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
	"github.com/quizhub/quiz-go-api/internal/service"
)

type mockProblemService struct {
	lastPayload dto.ProblemCreateRequest
	response    dto.ProblemResponse
	err         error
}

func (m *mockProblemService) Create(_ context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.ProblemResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockProblemService) Get(_ context.Context, id uint, includeAnswer bool) (dto.ProblemResponse, error) {
	if m.err != nil {
		return dto.ProblemResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockProblemService) List(_ context.Context, filter repository.ProblemFilter, includeAnswer bool) (dto.ProblemPageResponse, error) {
	return dto.ProblemPageResponse{}, m.err
}

func newProblemAdminApp(svc service.ProblemService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/admin/problems", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", models.RoleAdmin)
		return c.Next()
	})
	handler.NewProblemHandler(svc, zerolog.New(io.Discard)).RegisterAdmin(group)
	return app
}

func postProblem(t *testing.T, app *fiber.App, payload dto.ProblemCreateRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/problems", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestProblemHandlerCreate(t *testing.T) {
	svc := &mockProblemService{response: dto.ProblemResponse{ID: 1, Title: "Capitals", Type: models.ProblemTypeChoice}}
	app := newProblemAdminApp(svc)

	resp := postProblem(t, app, dto.ProblemCreateRequest{Title: "Capitals", Type: models.ProblemTypeChoice, Answer: "A"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "Capitals", svc.lastPayload.Title)
}

func TestProblemHandlerCreateMissingJudgeConfig(t *testing.T) {
	svc := &mockProblemService{err: service.ErrMissingJudgeConfig}
	app := newProblemAdminApp(svc)

	resp := postProblem(t, app, dto.ProblemCreateRequest{Title: "Two Sum", Type: models.ProblemTypeCoding})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.False(t, response.Success)
	require.Contains(t, response.Message, "judge problem id")
}

func TestProblemHandlerCreateUnknownJudgeProblem(t *testing.T) {
	svc := &mockProblemService{err: fmt.Errorf("%w: problem not found on judge", service.ErrJudgeProblemMissing)}
	app := newProblemAdminApp(svc)

	resp := postProblem(t, app, dto.ProblemCreateRequest{Title: "Two Sum", Type: models.ProblemTypeCoding, JudgeProblemID: "9999"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
