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

type replaceItemHandler struct {
	tracer    trace.Tracer
	log       *slog.Logger
	mutations mutations
	store     *item.Store
}

// ReplaceItem overwrites every field of an existing item. Omitting is5g
// clears it.
func ReplaceItem(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &replaceItemHandler{
		tracer:    otel.Tracer(instrumentationName),
		log:       items.Logger(instrumentationName),
		mutations: newMutations(),
		store:     store,
	}

	return rest.Operation(
		http.MethodPut,
		itemPath(),
		rest.HandleJson(h),
		rest.Summary("Replace an item"),
		rest.Tags("items"),
		rest.Problems(http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity),
	)
}

func (h *replaceItemHandler) Handle(ctx context.Context, req *item.Patch) (*item.Item, error) {
	spanCtx, span := h.tracer.Start(ctx, "replaceItemHandler.Handle")
	defer span.End()

	id, err := itemID(spanCtx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("item.id", id))

	draft, err := req.Draft()
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}

	it, err := h.store.Replace(id, draft)
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}
	h.mutations.record(spanCtx, "replace")

	h.log.InfoContext(spanCtx, "replaced item", slog.Int64("item_id", id))
	return &it, nil
}
