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

type listItemsHandler struct {
	tracer trace.Tracer
	log    *slog.Logger
	store  *item.Store
}

// ListItems returns every stored item ordered by id.
func ListItems(ctx context.Context, store *item.Store) rest.ApiOption {
	h := &listItemsHandler{
		tracer: otel.Tracer(instrumentationName),
		log:    items.Logger(instrumentationName),
		store:  store,
	}

	return rest.Operation(
		http.MethodGet,
		itemsPath(),
		rest.ProduceJson(h),
		rest.Summary("List items"),
		rest.Tags("items"),
	)
}

func (h *listItemsHandler) Produce(ctx context.Context) (*[]item.Item, error) {
	spanCtx, span := h.tracer.Start(ctx, "listItemsHandler.Produce")
	defer span.End()

	list := h.store.List()
	span.SetAttributes(attribute.Int("items.count", len(list)))
	h.log.DebugContext(spanCtx, "listed items", slog.Int("count", len(list)))

	return &list, nil
}
