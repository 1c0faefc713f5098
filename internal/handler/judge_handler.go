package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-go-api/internal/dto"
	"github.com/noah-isme/judge-go-api/internal/service"
	"github.com/noah-isme/judge-go-api/internal/utils"
	"github.com/noah-isme/judge-go-api/pkg/judge"
)

// JudgeHandler exposes the synchronous judging endpoint.
type JudgeHandler struct {
	service   service.JudgeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewJudgeHandler constructs the handler.
func NewJudgeHandler(service service.JudgeService, validator *validator.Validate, logger zerolog.Logger) *JudgeHandler {
	return &JudgeHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "judge_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *JudgeHandler) Register(router fiber.Router) {
	router.Post("", h.judge)
}

func (h *JudgeHandler) judge(c *fiber.Ctx) error {
	var payload dto.JudgeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Judge(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission judged", response)
}

func (h *JudgeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, judge.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language not supported")
	case errors.Is(err, judge.ErrInvalidSubmission):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("judge operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
