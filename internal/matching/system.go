package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/scrivener/internal/templates"
)

// ErrEmptyQuery is returned when a match request carries no query text.
var ErrEmptyQuery = errors.New("query is required")

// MapHTTPStatus maps matching errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEmptyQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Catalog supplies the templates to rank.
type Catalog interface {
	Catalog(ctx context.Context) ([]templates.Template, error)
}

// System ranks the live catalog against a query.
type System interface {
	Handler() *Handler
	Match(ctx context.Context, query string) ([]Match, error)
}

type system struct {
	catalog Catalog
	matcher *Matcher
	logger  *slog.Logger
}

func NewSystem(catalog Catalog, matcher *Matcher, logger *slog.Logger) System {
	return &system{
		catalog: catalog,
		matcher: matcher,
		logger:  logger.With("system", "matching"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Match(ctx context.Context, query string) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	matches := s.matcher.Match(query, catalog)
	s.logger.Debug("query matched", "catalog", len(catalog), "matches", len(matches))
	return matches, nil
}
