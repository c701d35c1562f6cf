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

type deleteItemHandler struct {
	tracer    trace.Tracer
	log       *slog.Logger
	mutations mutations
	store     *item.Store
}

// DeleteItem removes an item and responds with 204 No Content.
func DeleteItem(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &deleteItemHandler{
		tracer:    otel.Tracer(instrumentationName),
		log:       items.Logger(instrumentationName),
		mutations: newMutations(),
		store:     store,
	}

	return rest.Operation(
		http.MethodDelete,
		itemPath(),
		rest.ProduceNothing(h),
		rest.Summary("Delete an item"),
		rest.Tags("items"),
		rest.Problems(http.StatusBadRequest, http.StatusNotFound),
	)
}

func (h *deleteItemHandler) Consume(ctx context.Context, _ *rest.EmptyRequest) error {
	spanCtx, span := h.tracer.Start(ctx, "deleteItemHandler.Consume")
	defer span.End()

	id, err := itemID(spanCtx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("item.id", id))

	err = h.store.Delete(id)
	if err != nil {
		span.RecordError(err)
		return problemOf(err)
	}
	h.mutations.record(spanCtx, "delete")

	h.log.InfoContext(spanCtx, "deleted item", slog.Int64("item_id", id))
	return nil
}
