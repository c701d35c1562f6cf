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

type updateItemHandler struct {
	tracer    trace.Tracer
	log       *slog.Logger
	mutations mutations
	store     *item.Store
}

// UpdateItem changes only the fields present in the request body.
// Sending "is5g": null clears the flag.
func UpdateItem(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &updateItemHandler{
		tracer:    otel.Tracer(instrumentationName),
		log:       items.Logger(instrumentationName),
		mutations: newMutations(),
		store:     store,
	}

	return rest.Operation(
		http.MethodPatch,
		itemPath(),
		rest.HandleJson(h),
		rest.Summary("Update an item"),
		rest.Tags("items"),
		rest.Problems(http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity),
	)
}

func (h *updateItemHandler) Handle(ctx context.Context, req *item.Patch) (*item.Item, error) {
	spanCtx, span := h.tracer.Start(ctx, "updateItemHandler.Handle")
	defer span.End()

	id, err := itemID(spanCtx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("item.id", id))

	it, err := h.store.Update(id, *req)
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}
	h.mutations.record(spanCtx, "update")

	h.log.InfoContext(spanCtx, "updated item", slog.Int64("item_id", id))
	return &it, nil
}
