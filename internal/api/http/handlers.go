package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/short-links/internal/models"
	"github.com/vadimbarashkov/short-links/internal/service"
	"github.com/vadimbarashkov/short-links/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

type createURLRequest struct {
	URL             string     `json:"url" validate:"required,url"`
	CustomShortCode string     `json:"custom_short_code" validate:"omitempty,shortcode"`
	Title           *string    `json:"title" validate:"omitempty,max=255"`
	Description     *string    `json:"description" validate:"omitempty,max=1000"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func (req createURLRequest) toNewURL(ownerID string) models.NewURL {
	return models.NewURL{
		OriginalURL:     req.URL,
		OwnerID:         ownerID,
		CustomShortCode: req.CustomShortCode,
		Title:           req.Title,
		Description:     req.Description,
		ExpiresAt:       req.ExpiresAt,
	}
}

type updateURLRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

type urlResponse struct {
	ID          uuid.UUID  `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url,omitempty"`
	URL         string     `json:"url"`
	Clicks      int64      `json:"clicks"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toURLResponse(url *models.URL, baseURL string) urlResponse {
	resp := urlResponse{
		ID:          url.ID,
		ShortCode:   url.ShortCode,
		URL:         url.OriginalURL,
		Clicks:      url.Clicks,
		Title:       url.Title,
		Description: url.Description,
		IsActive:    url.IsActive,
		ExpiresAt:   url.ExpiresAt,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	}

	if baseURL != "" {
		resp.ShortURL = baseURL + "/" + url.ShortCode
	}

	return resp
}

func toURLResponses(urls []*models.URL, baseURL string) []urlResponse {
	resp := make([]urlResponse, 0, len(urls))
	for _, u := range urls {
		resp = append(resp, toURLResponse(u, baseURL))
	}
	return resp
}

type pageResponse struct {
	Data       []urlResponse      `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

type resolveResponse struct {
	URL string `json:"url"`
}

type bulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// decodeJSON reads and validates the request body. It writes the error
// response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if err := validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

// renderServiceError maps a service error kind to its HTTP response.
// invalidMsg is reported to the client for service.ErrInvalidInput.
func renderServiceError(w http.ResponseWriter, r *http.Request, op, invalidMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.InvalidInputResponse(invalidMsg))
	case errors.Is(err, service.ErrConflict):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.ConflictResponse)
	case errors.Is(err, service.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
	case errors.Is(err, service.ErrForbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.ForbiddenResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

// urlID parses the id path parameter. Malformed ids cannot exist, so they
// are reported as not found.
func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
		return uuid.Nil, false
	}
	return id, true
}

func createURL(
	svc URLService,
	validate *validator.Validate,
	baseURL, op string,
	owner func(context.Context) string,
) http.HandlerFunc {
	const successMsg = "The URL has been shortened successfully."
	const invalidMsg = "The URL must be absolute and the short code must be 3-20 letters, digits, hyphens or underscores."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createURLRequest

		if !decodeJSON(w, r, validate, &req) {
			return
		}

		url, err := svc.CreateShortURL(r.Context(), req.toNewURL(owner(r.Context())))
		if err != nil {
			renderServiceError(w, r, op, invalidMsg, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

func handleCreateURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	return createURL(svc, validate, baseURL, "api.http.handleCreateURL", ownerFromContext)
}

func handleCreatePublicURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	return createURL(svc, validate, baseURL, "api.http.handleCreatePublicURL", func(context.Context) string {
		return models.AnonymousOwner
	})
}

func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		target, err := svc.RedirectToURL(r.Context(), shortCode)
		if err != nil {
			renderServiceError(w, r, op, "", err)
			return
		}

		http.Redirect(w, r, target, http.StatusFound)
	}
}

func handleResolveShortCode(svc URLService) http.HandlerFunc {
	const op = "api.http.handleResolveShortCode"
	const successMsg = "The short code was successfully resolved."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		target, err := svc.RedirectToURL(r.Context(), shortCode)
		if err != nil {
			renderServiceError(w, r, op, "", err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, resolveResponse{URL: target}))
	}
}

func handleGetURLStats(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"
	const successMsg = "The URL statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			renderServiceError(w, r, op, "", err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func handleGetTopURLs(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetTopURLs"
	const successMsg = "The most visited URLs retrieved successfully."
	const invalidMsg = "The limit must be between 1 and 100."

	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidInputResponse(invalidMsg))
			return
		}

		urls, err := svc.GetTopURLs(r.Context(), limit)
		if err != nil {
			renderServiceError(w, r, op, invalidMsg, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponses(urls, baseURL)))
	}
}

func handleGetUserURLs(svc URLService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetUserURLs"
	const successMsg = "The URLs retrieved successfully."
	const invalidMsg = "Invalid pagination or sorting parameters."

	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidInputResponse(invalidMsg))
			return
		}

		limit, err := queryInt(r, "limit")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.InvalidInputResponse(invalidMsg))
			return
		}

		q := r.URL.Query()
		f := models.URLFilter{
			Page:      page,
			Limit:     limit,
			Query:     q.Get("query"),
			SortBy:    q.Get("sort_by"),
			SortOrder: q.Get("sort_order"),
		}

		res, err := svc.GetUserURLs(r.Context(), ownerFromContext(r.Context()), f)
		if err != nil {
			renderServiceError(w, r, op, invalidMsg, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, pageResponse{
			Data: toURLResponses(res.Data, baseURL),
			Pagination: paginationResponse{
				Page:  res.Pagination.Page,
				Total: res.Pagination.Total,
				Pages: res.Pagination.Pages,
				Limit: res.Pagination.Limit,
			},
		}))
	}
}

func handleUpdateURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleUpdateURL"
	const successMsg = "The URL was successfully updated."

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		var req updateURLRequest

		if !decodeJSON(w, r, validate, &req) {
			return
		}

		upd := models.URLUpdate{
			Title:       req.Title,
			Description: req.Description,
			IsActive:    req.IsActive,
			ExpiresAt:   req.ExpiresAt,
		}

		url, err := svc.UpdateURL(r.Context(), id, ownerFromContext(r.Context()), upd)
		if err != nil {
			renderServiceError(w, r, op, "", err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url, baseURL)))
	}
}

func handleDeleteURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeleteURL"
	const successMsg = "The URL was successfully deleted."

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		deleted, err := svc.DeleteURL(r.Context(), id, ownerFromContext(r.Context()))
		if err != nil {
			renderServiceError(w, r, op, "", err)
			return
		}

		// Removed concurrently between the ownership check and the delete.
		if !deleted {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

func handleBulkDeleteURLs(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleBulkDeleteURLs"
	const successMsg = "The URLs were successfully deleted."
	const invalidMsg = "Between 1 and 100 ids are required."

	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteRequest

		if !decodeJSON(w, r, validate, &req) {
			return
		}

		n, err := svc.BulkDeleteURLs(r.Context(), ownerFromContext(r.Context()), req.IDs)
		if err != nil {
			renderServiceError(w, r, op, invalidMsg, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, bulkDeleteResponse{Deleted: n}))
	}
}
