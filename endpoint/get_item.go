// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/items"
	"github.com/z5labs/items/item"
	"github.com/z5labs/items/rest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type getItemHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  *item.Store
}

// GetItem returns a single item by id.
func GetItem(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &getItemHandler{
		tracer: otel.Tracer(instrumentationName),
		log:    items.Logger(instrumentationName),
		store:  store,
	}

	return rest.Operation(
		http.MethodGet,
		itemPath(),
		rest.ProduceJson(h),
		rest.Summary("Get an item"),
		rest.Tags("items"),
		rest.Problems(http.StatusBadRequest, http.StatusNotFound),
	)
}

func (h *getItemHandler) Produce(ctx context.Context) (*item.Item, error) {
	spanCtx, span := h.tracer.Start(ctx, "getItemHandler.Produce")
	defer span.End()

	id, err := itemID(spanCtx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("item.id", id))

	it, err := h.store.Get(id)
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}

	h.log.DebugContext(spanCtx, "found item", slog.Int64("item_id", id))
	return &it, nil
}
