package api

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/entrybase-dev/entrybase/internal/config"
	"github.com/entrybase-dev/entrybase/internal/entries"
	"github.com/entrybase-dev/entrybase/internal/query"
)

// EntriesHandler serves entry queries.
type EntriesHandler struct {
	config     *config.Config
	parser     *CriteriaParser
	repository *entries.Repository
	registry   entries.SectionRegistry
	lookup     entries.Lookup
}

// NewEntriesHandler creates a new entries handler
func NewEntriesHandler(cfg *config.Config, repository *entries.Repository, registry entries.SectionRegistry, lookup entries.Lookup) *EntriesHandler {
	return &EntriesHandler{
		config:     cfg,
		parser:     NewCriteriaParser(cfg),
		repository: repository,
		registry:   registry,
		lookup:     lookup,
	}
}

// List handles GET /api/v1/entries
func (h *EntriesHandler) List(c *fiber.Ctx) error {
	criteria, err := h.parseCriteria(c)
	if err != nil {
		return badRequest(c, err)
	}

	results, err := h.repository.Find(c.Context(), criteria, h.prepareDeps(c))
	if err != nil {
		return h.queryError(c, err)
	}

	return c.JSON(results)
}

// Count handles GET /api/v1/entries/count
func (h *EntriesHandler) Count(c *fiber.Ctx) error {
	criteria, err := h.parseCriteria(c)
	if err != nil {
		return badRequest(c, err)
	}

	count, err := h.repository.Count(c.Context(), criteria, h.prepareDeps(c))
	if err != nil {
		return h.queryError(c, err)
	}

	return c.JSON(fiber.Map{"count": count})
}

func (h *EntriesHandler) parseCriteria(c *fiber.Ctx) (*entries.Criteria, error) {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return nil, err
	}
	return h.parser.Parse(values)
}

func (h *EntriesHandler) prepareDeps(c *fiber.Ctx) entries.PrepareDeps {
	return entries.PrepareDeps{
		Lookup:   h.lookup,
		Identity: currentIdentity(c),
		Registry: h.registry,
		Caps: entries.Capabilities{
			AuthorFiltering: h.config.Capabilities.AuthorFiltering,
		},
	}
}

func (h *EntriesHandler) queryError(c *fiber.Ctx, err error) error {
	var malformed *query.MalformedPredicateError
	if errors.As(err, &malformed) {
		return badRequest(c, err)
	}

	log.Error().Err(err).Msg("Entry query failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to execute query",
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid query parameters",
		"details": err.Error(),
	})
}
