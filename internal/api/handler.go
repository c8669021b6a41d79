package api

import (
	"net/http"
	"strconv"

	"golang-news-briefer/internal/repository"
	"golang-news-briefer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler serves the read-only HTTP API used for monitoring briefing runs.
type Handler struct {
	articleRepo repository.ArticleRepository
	socialRepo  repository.SocialPostRepository
	summaryRepo repository.SummaryRepository
	trendRepo   repository.TrendRepository
	storyRepo   repository.StoryFingerprintRepository
	logger      *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	articleRepo repository.ArticleRepository,
	socialRepo repository.SocialPostRepository,
	summaryRepo repository.SummaryRepository,
	trendRepo repository.TrendRepository,
	storyRepo repository.StoryFingerprintRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{
		articleRepo: articleRepo,
		socialRepo:  socialRepo,
		summaryRepo: summaryRepo,
		trendRepo:   trendRepo,
		storyRepo:   storyRepo,
		logger:      log,
	}
}

// RegisterRoutes registers the read-only routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/briefings", h.GetBriefings)
	e.GET("/trends", h.GetTrends)
	e.GET("/stats", h.GetStats)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetBriefings returns recent briefing audit rows.
func (h *Handler) GetBriefings(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	summaries, err := h.summaryRepo.GetRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetTrends returns currently active trending topics.
func (h *Handler) GetTrends(c echo.Context) error {
	topics, err := h.trendRepo.ListActiveTopics(c.Request().Context(), 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, topics)
}

// GetStats returns row counts across the stores.
func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	articles, err := h.articleRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	posts, err := h.socialRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	summaries, err := h.summaryRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	topics, err := h.trendRepo.CountTopics(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	correlations, err := h.trendRepo.CountCorrelations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	stories, err := h.storyRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"articles":        articles,
		"social_posts":    posts,
		"summaries":       summaries,
		"trends":          topics,
		"correlations":    correlations,
		"tracked_stories": stories,
	})
}
