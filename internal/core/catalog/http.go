// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/bookreview/internal/platform/request"
	"github.com/taibuivan/bookreview/internal/platform/respond"
	"github.com/taibuivan/bookreview/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the /api/books sub-router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.getEntry)
	return router
}

func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.GetEntry(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entry)
}
