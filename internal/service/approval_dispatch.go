package service

import (
	"context"
	"fmt"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
)

// DispatchFunc performs the real domain mutation for an approved job. Entries
// narrow the decoded payload to its concrete shape and forward to the owning
// service; service errors (not-found, conflict, validation) pass through
// unchanged so the engine's transaction rollback reacts uniformly.
type DispatchFunc func(ctx context.Context, targetID *uuid.UUID, payload interface{}) error

// DispatchTable maps (entity type, operation) to the domain service call that
// executes it. The table is built once at startup and injected into the
// approval service; there is no runtime registration.
type DispatchTable struct {
	entries map[payloadKey]DispatchFunc
}

// governedPairs is the closed set of operations employees may submit for approval.
var governedPairs = []payloadKey{
	{model.EntityTypeCategory, model.OperationCreate},
	{model.EntityTypeCategory, model.OperationUpdate},
	{model.EntityTypeCategory, model.OperationDelete},
	{model.EntityTypeProduct, model.OperationCreate},
	{model.EntityTypeProduct, model.OperationUpdate},
	{model.EntityTypeProduct, model.OperationDelete},
}

// NewDispatchTable wires every governed pair to its domain service call and
// verifies completeness against the codec: a governed pair without a dispatch
// entry, or a payload-bearing pair without a codec shape, is a wiring bug and
// fails startup instead of surfacing on the first approval.
func NewDispatchTable(codec *PayloadCodec, categories CategoryService, products ProductService) (*DispatchTable, error) {
	t := &DispatchTable{entries: make(map[payloadKey]DispatchFunc)}

	t.entries[payloadKey{model.EntityTypeCategory, model.OperationCreate}] = func(ctx context.Context, _ *uuid.UUID, payload interface{}) error {
		p, ok := payload.(CreateCategoryPayload)
		if !ok {
			return fmt.Errorf("%w: expected CreateCategoryPayload, got %T", ErrUnsupportedPayloadKind, payload)
		}
		_, err := categories.Create(ctx, CreateCategoryRequest{Name: p.Name})
		return err
	}

	t.entries[payloadKey{model.EntityTypeCategory, model.OperationUpdate}] = func(ctx context.Context, targetID *uuid.UUID, payload interface{}) error {
		p, ok := payload.(UpdateCategoryPayload)
		if !ok {
			return fmt.Errorf("%w: expected UpdateCategoryPayload, got %T", ErrUnsupportedPayloadKind, payload)
		}
		_, err := categories.Update(ctx, *targetID, UpdateCategoryRequest{Name: p.Name})
		return err
	}

	t.entries[payloadKey{model.EntityTypeCategory, model.OperationDelete}] = func(ctx context.Context, targetID *uuid.UUID, _ interface{}) error {
		return categories.Delete(ctx, *targetID)
	}

	t.entries[payloadKey{model.EntityTypeProduct, model.OperationCreate}] = func(ctx context.Context, _ *uuid.UUID, payload interface{}) error {
		p, ok := payload.(CreateProductPayload)
		if !ok {
			return fmt.Errorf("%w: expected CreateProductPayload, got %T", ErrUnsupportedPayloadKind, payload)
		}
		_, err := products.Create(ctx, CreateProductRequest{
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			CategoryID:  p.CategoryID,
		})
		return err
	}

	t.entries[payloadKey{model.EntityTypeProduct, model.OperationUpdate}] = func(ctx context.Context, targetID *uuid.UUID, payload interface{}) error {
		p, ok := payload.(UpdateProductPayload)
		if !ok {
			return fmt.Errorf("%w: expected UpdateProductPayload, got %T", ErrUnsupportedPayloadKind, payload)
		}
		_, err := products.Update(ctx, *targetID, UpdateProductRequest{
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			CategoryID:  p.CategoryID,
		})
		return err
	}

	t.entries[payloadKey{model.EntityTypeProduct, model.OperationDelete}] = func(ctx context.Context, targetID *uuid.UUID, _ interface{}) error {
		return products.Delete(ctx, *targetID)
	}

	if err := t.verify(codec); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *DispatchTable) verify(codec *PayloadCodec) error {
	for _, pair := range governedPairs {
		if _, ok := t.entries[pair]; !ok {
			return fmt.Errorf("dispatch table missing entry for %s/%s", pair.EntityType, pair.Operation)
		}
		needsPayload := pair.Operation == model.OperationCreate || pair.Operation == model.OperationUpdate
		if needsPayload && !codec.Supported(pair.EntityType, pair.Operation) {
			return fmt.Errorf("payload codec missing shape for %s/%s", pair.EntityType, pair.Operation)
		}
	}
	return nil
}

// Governed reports whether the pair is accepted for submission at all.
func (t *DispatchTable) Governed(entityType, operation string) bool {
	_, ok := t.entries[payloadKey{entityType, operation}]
	return ok
}

// Dispatch invokes the entry for the pair. Callers have already validated the
// pair via Governed, so a missing entry here is an internal error.
func (t *DispatchTable) Dispatch(ctx context.Context, entityType, operation string, targetID *uuid.UUID, payload interface{}) error {
	fn, ok := t.entries[payloadKey{entityType, operation}]
	if !ok {
		return fmt.Errorf("no dispatch entry for %s/%s", entityType, operation)
	}
	return fn(ctx, targetID, payload)
}
