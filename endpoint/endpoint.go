// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint exposes an [item.Store] as the operations of a [rest.Api].
//
// Every constructor returns a [rest.ApiOption] bound to the store it is given:
//
//	store := item.NewStore()
//	api := rest.NewApi(
//		"Items API",
//		"1.0",
//		endpoint.Welcome(ctx),
//		endpoint.ListItems(ctx, store),
//		endpoint.CreateItem(ctx, store),
//	)
package endpoint

import (
	"context"
	"regexp"
	"strconv"

	"github.com/z5labs/items/item"
	"github.com/z5labs/items/rest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/z5labs/items/endpoint"

// BasePath is the path every item operation is served under.
const BasePath = "/api/v1"

var idPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

func itemsPath() rest.Path {
	return rest.BasePath(BasePath).Segment("items")
}

func itemPath() rest.Path {
	return itemsPath().Param("id", rest.Required(), rest.Regex(idPattern))
}

func itemID(ctx context.Context) (int64, error) {
	v := rest.PathParamValue(ctx, "id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, rest.BadRequestError{
			Cause: rest.InvalidParameterValueError{
				Parameter: "id",
				In:        "path",
				Value:     v,
			},
		}
	}
	return id, nil
}

// Item is the JSON representation of a stored item.
type Item struct {
	item.Item
}

// Location implements the [rest.Locator] interface.
func (it *Item) Location() string {
	return BasePath + "/items/" + strconv.FormatInt(it.ID, 10)
}

type mutations struct {
	counter metric.Int64Counter
}

func newMutations() mutations {
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"items.mutations",
		metric.WithDescription("Number of successful changes made to the item store."),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		otel.Handle(err)
		counter = noop.Int64Counter{}
	}
	return mutations{counter: counter}
}

func (m mutations) record(ctx context.Context, operation string) {
	m.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
