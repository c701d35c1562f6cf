// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"net/http"

	"github.com/z5labs/items/rest"
)

// WelcomeMessage is returned by the API root.
const WelcomeMessage = "Welcome to the Items API!"

// WelcomeResponse is the body of the API root.
type WelcomeResponse struct {
	Message string `json:"message"`
}

type welcomeHandler struct{}

// Welcome serves a greeting at the API root.
func Welcome(ctx context.Context) rest.ApiOption {
	return rest.Operation(
		http.MethodGet,
		rest.BasePath(BasePath),
		rest.ProduceJson(welcomeHandler{}),
		rest.Summary("Greet API clients"),
		rest.Tags("health"),
	)
}

func (welcomeHandler) Produce(ctx context.Context) (*WelcomeResponse, error) {
	return &WelcomeResponse{Message: WelcomeMessage}, nil
}
