// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookreview/internal/platform/constants"
	requestutil "github.com/taibuivan/bookreview/internal/platform/request"
	"github.com/taibuivan/bookreview/internal/platform/respond"
)

// Ingestor is the behaviour the HTTP layer needs from [Service].
type Ingestor interface {
	Submit(ctx context.Context, submission Submission) (*Review, error)
	ListRecent(ctx context.Context) ([]*ReviewWithAggregate, error)
}

type Handler struct {
	service Ingestor
}

func NewHandler(service Ingestor) *Handler {
	return &Handler{service: service}
}

// Routes returns the /api/reviews sub-router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.submitReview)
	router.Get("/", handler.listRecent)
	return router
}

func (handler *Handler) submitReview(writer http.ResponseWriter, request *http.Request) {
	var submission Submission
	if err := requestutil.DecodeJSON(writer, request, &submission); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.Submit(request.Context(), submission)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, constants.ReviewSavedMessage, review)
}

func (handler *Handler) listRecent(writer http.ResponseWriter, request *http.Request) {
	reviews, err := handler.service.ListRecent(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.List(writer, len(reviews), reviews)
}
