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

// SubmissionHandler manages answer submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/mine", h.listMine)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches the administrative routes.
func (h *SubmissionHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.listAll)
	router.Get("/user/:id", h.listByUser)
	router.Patch("/:id/verdict", h.forceVerdict)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.Context(), id, userIDFromContext(c), userRoleFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	userID := userIDFromContext(c)

	if raw := c.Query("problem_id"); raw != "" {
		problemID, err := parseQueryProblemID(c)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}

		submissions, err := h.service.ListMineForProblem(c.Context(), userID, problemID)
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.SendSuccess(c, "submissions retrieved", submissions)
	}

	submissions, err := h.service.ListMine(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listAll(c *fiber.Ctx) error {
	page, pageSize := utils.ParsePagination(c)

	submissions, err := h.service.ListAll(c.Context(), page, pageSize)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listByUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) forceVerdict(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionForceVerdictRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.ForceVerdict(c.Context(), id, payload.Verdict)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "verdict updated", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "submission belongs to another user")
	case errors.Is(err, service.ErrMissingJudgeConfig):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "problem is not configured for judging")
	case errors.Is(err, service.ErrUnknownVerdict):
		return utils.SendError(c, fiber.StatusBadRequest, "unknown verdict")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseQueryProblemID(c *fiber.Ctx) (uint, error) {
	problemID := c.QueryInt("problem_id")
	if problemID <= 0 {
		return 0, errors.New("problem_id must be a positive integer")
	}
	return uint(problemID), nil
}
