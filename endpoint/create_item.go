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

type createItemHandler struct {
	tracer    trace.Tracer
	log       *slog.Logger
	mutations mutations
	store     *item.Store
}

// CreateItem stores a new item and responds with 201 Created and its location.
// The name and price fields are required.
func CreateItem(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &createItemHandler{
		tracer:    otel.Tracer(instrumentationName),
		log:       items.Logger(instrumentationName),
		mutations: newMutations(),
		store:     store,
	}

	return rest.Operation(
		http.MethodPost,
		itemsPath(),
		rest.HandleCreatedJson(h),
		rest.Summary("Create an item"),
		rest.Tags("items"),
		rest.Problems(http.StatusBadRequest, http.StatusUnprocessableEntity),
	)
}

func (h *createItemHandler) Handle(ctx context.Context, req *item.Patch) (*Item, error) {
	spanCtx, span := h.tracer.Start(ctx, "createItemHandler.Handle")
	defer span.End()

	draft, err := req.Draft()
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}

	it, err := h.store.Create(draft)
	if err != nil {
		span.RecordError(err)
		return nil, problemOf(err)
	}
	span.SetAttributes(attribute.Int64("item.id", it.ID))
	h.mutations.record(spanCtx, "create")

	h.log.InfoContext(spanCtx, "created item", slog.Int64("item_id", it.ID))
	return &Item{Item: it}, nil
}
