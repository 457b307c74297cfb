package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/repository"
	"github.com/quizhub/quiz-go-api/internal/service"
	"github.com/quizhub/quiz-go-api/internal/utils"
)

// ProblemHandler manages problem catalogue endpoints.
type ProblemHandler struct {
	service service.ProblemService
	logger  zerolog.Logger
}

// NewProblemHandler builds a problem handler instance.
func NewProblemHandler(service service.ProblemService, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		service: service,
		logger:  logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the administrative routes.
func (h *ProblemHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	page, pageSize := utils.ParsePagination(c)
	filter := repository.ProblemFilter{
		Type:     c.Query("type"),
		Title:    c.Query("title"),
		Page:     page,
		PageSize: pageSize,
	}

	problems, err := h.service.List(c.Context(), filter, isAdminFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problems retrieved", problems)
}

func (h *ProblemHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	problem, err := h.service.Get(c.Context(), id, isAdminFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem retrieved", problem)
}

func (h *ProblemHandler) create(c *fiber.Ctx) error {
	var payload dto.ProblemCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	problem, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "problem created", problem)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrMissingJudgeConfig):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "coding problems require a judge problem id")
	case errors.Is(err, service.ErrJudgeProblemMissing):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "judge problem not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
