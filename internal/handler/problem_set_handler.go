package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/service"
	"github.com/quizhub/quiz-go-api/internal/utils"
)

// ProblemSetHandler manages problem set endpoints.
type ProblemSetHandler struct {
	service service.ProblemSetService
	logger  zerolog.Logger
}

// NewProblemSetHandler builds a problem set handler instance.
func NewProblemSetHandler(service service.ProblemSetService, logger zerolog.Logger) *ProblemSetHandler {
	return &ProblemSetHandler{
		service: service,
		logger:  logger.With().Str("component", "problem_set_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProblemSetHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the administrative routes.
func (h *ProblemSetHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ProblemSetHandler) list(c *fiber.Ctx) error {
	page, pageSize := utils.ParsePagination(c)

	sets, err := h.service.List(c.Context(), page, pageSize, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem sets retrieved", sets)
}

func (h *ProblemSetHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	set, err := h.service.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem set retrieved", set)
}

func (h *ProblemSetHandler) create(c *fiber.Ctx) error {
	var payload dto.ProblemSetCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "problem set created", set)
}

func (h *ProblemSetHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProblemSetUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem set updated", set)
}

func (h *ProblemSetHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem set deleted", nil)
}

func (h *ProblemSetHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemSetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem set not found")
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "problem set references an unknown problem")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
