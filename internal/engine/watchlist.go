package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "marketsense/internal/errors"
	"marketsense/internal/models"
)

// AddStock resolves a user query against the symbol catalog and inserts a
// new watchlist entity. The entity starts out REFRESHING and its first
// fetch is triggered asynchronously. Adding a stock whose symbol or name
// is already tracked fails with ErrDuplicateEntity and changes nothing.
func (e *Engine) AddStock(ctx context.Context, query string) (models.TrackedEntity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.TrackedEntity{}, fmt.Errorf("empty stock query")
	}

	displayName := query
	fragment := query
	if def, ok := models.ResolveStock(query); ok {
		displayName = fmt.Sprintf("%s - %s", def.Symbol, def.Name)
		fragment = def.Symbol
	}

	if e.store.HasStockMatching(fragment) {
		return models.TrackedEntity{}, apperrors.ErrDuplicateEntity
	}

	// uuid keeps ids unique even when two stocks are added within the
	// same clock tick.
	id := "stock-" + uuid.NewString()
	entity := e.store.AddStock(id, displayName)

	e.logger.Info().Str("entity", id).Str("name", displayName).Msg("Stock added to watchlist")

	go func() {
		_ = e.RefreshEntity(ctx, id)
	}()

	return entity, nil
}

// RemoveStock deletes a watchlist entity unconditionally. An in-flight
// refresh for the id is not cancelled; its result lands as a store no-op.
func (e *Engine) RemoveStock(id string) error {
	if !e.store.RemoveStock(id) {
		return apperrors.ErrEntityNotFound
	}
	e.logger.Info().Str("entity", id).Msg("Stock removed from watchlist")
	return nil
}
