package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/Tech-Trend-Emporium/tech-trend-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Codec failure sentinels. Both map to a 400 at the transport layer; they are
// distinct so callers can tell a wrong payload shape from unparseable text.
var (
	ErrUnsupportedPayloadKind = errors.New("unsupported payload kind")
	ErrMalformedPayload       = errors.New("malformed payload")
)

// Typed submission payloads — one shape per governed (entity type, operation)
// pair. These are what employees submit and what the dispatch table replays
// against the domain services after approval.

type CreateCategoryPayload struct {
	Name string `json:"name"`
}

type UpdateCategoryPayload struct {
	Name string `json:"name"`
}

type CreateProductPayload struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id"`
}

type UpdateProductPayload struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id"`
}

type payloadKey struct {
	EntityType string
	Operation  string
}

// PayloadCodec translates between typed payloads and the neutral JSON envelope
// stored on an approval job. The registry is closed: only pairs registered at
// construction encode or decode, so a payload submitted under the wrong pair
// fails before anything is persisted.
type PayloadCodec struct {
	registry map[payloadKey]reflect.Type
}

// NewPayloadCodec builds the codec with every governed payload shape registered.
func NewPayloadCodec() *PayloadCodec {
	c := &PayloadCodec{registry: make(map[payloadKey]reflect.Type)}
	c.register(model.EntityTypeCategory, model.OperationCreate, CreateCategoryPayload{})
	c.register(model.EntityTypeCategory, model.OperationUpdate, UpdateCategoryPayload{})
	c.register(model.EntityTypeProduct, model.OperationCreate, CreateProductPayload{})
	c.register(model.EntityTypeProduct, model.OperationUpdate, UpdateProductPayload{})
	return c
}

func (c *PayloadCodec) register(entityType, operation string, prototype interface{}) {
	c.registry[payloadKey{entityType, operation}] = reflect.TypeOf(prototype)
}

// Pairs returns every (entity type, operation) pair carrying a payload shape.
func (c *PayloadCodec) Pairs() [][2]string {
	pairs := make([][2]string, 0, len(c.registry))
	for k := range c.registry {
		pairs = append(pairs, [2]string{k.EntityType, k.Operation})
	}
	return pairs
}

// Supported reports whether the pair has a registered payload shape.
// DELETE operations carry no payload and are intentionally absent.
func (c *PayloadCodec) Supported(entityType, operation string) bool {
	_, ok := c.registry[payloadKey{entityType, operation}]
	return ok
}

// Encode serializes a typed payload for storage. The payload's concrete type
// must be exactly the shape registered for the pair.
func (c *PayloadCodec) Encode(entityType, operation string, payload interface{}) (string, error) {
	want, ok := c.registry[payloadKey{entityType, operation}]
	if !ok {
		return "", fmt.Errorf("%w: no payload registered for %s/%s", ErrUnsupportedPayloadKind, entityType, operation)
	}

	got := reflect.TypeOf(payload)
	if got != nil && got.Kind() == reflect.Ptr {
		got = got.Elem()
	}
	if got != want {
		return "", fmt.Errorf("%w: %s/%s expects %s, got %v", ErrUnsupportedPayloadKind, entityType, operation, want.Name(), got)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return string(raw), nil
}

// Decode parses a stored envelope back into the registered shape for the pair.
// Unknown fields are rejected so schema drift between submission and decision
// surfaces as MalformedPayload instead of silently dropping data.
func (c *PayloadCodec) Decode(entityType, operation, envelope string) (interface{}, error) {
	want, ok := c.registry[payloadKey{entityType, operation}]
	if !ok {
		return nil, fmt.Errorf("%w: no payload registered for %s/%s", ErrUnsupportedPayloadKind, entityType, operation)
	}

	out := reflect.New(want).Interface()
	dec := json.NewDecoder(bytes.NewReader([]byte(envelope)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	// Reject trailing garbage after the JSON document
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedPayload)
	}

	return reflect.ValueOf(out).Elem().Interface(), nil
}
