package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-go-api/internal/service"
	"github.com/noah-isme/judge-go-api/internal/utils"
)

// LanguageHandler exposes the supported language catalogue.
type LanguageHandler struct {
	service service.JudgeService
	logger  zerolog.Logger
}

// NewLanguageHandler constructs the handler.
func NewLanguageHandler(service service.JudgeService, logger zerolog.Logger) *LanguageHandler {
	return &LanguageHandler{
		service: service,
		logger:  logger.With().Str("component", "language_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *LanguageHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *LanguageHandler) list(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "languages retrieved", h.service.Languages())
}
