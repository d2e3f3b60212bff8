package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/lost-found-api/internal/application/item"
	"github.com/lost-found-api/internal/domain"
	"github.com/lost-found-api/internal/transport/http/middleware"
)

// formOverhead is the multipart allowance on top of the image itself.
const formOverhead = 1 << 20

// allowedImageTypes are the sniffed content types stored in the public bucket.
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic"}

// ItemHandler handles item report endpoints.
type ItemHandler struct {
	svc           item.Service
	maxImageBytes int64
}

func NewItemHandler(svc item.Service, maxImageBytes int64) *ItemHandler {
	return &ItemHandler{svc: svc, maxImageBytes: maxImageBytes}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), domain.ItemFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Category: strings.TrimSpace(q.Get("category")),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, items, "")
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, it, "")
}

// Create accepts a multipart form with the report fields and an optional "image" file.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "validation failed", h.sizeMessage())
			return
		}
		writeError(w, http.StatusBadRequest, "validation failed", "invalid multipart form")
		return
	}

	img, err := h.readImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	res, err := h.svc.Create(r.Context(), item.CreateInput{
		Request: domain.CreateItemRequest{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			ContactInfo: r.FormValue("contact_info"),
			Location:    r.FormValue("location"),
			Status:      r.FormValue("status"),
		},
		PosterID: ident.UserID,
		Image:    img,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusCreated, res, "item created")
}

// readImage returns nil when no file was sent.
func (h *ItemHandler) readImage(r *http.Request) (*item.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("invalid image upload")
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, errors.New(h.sizeMessage())
	}
	if len(data) == 0 {
		return nil, nil
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("only jpeg, png, gif, webp or heic image uploads are allowed, got %s", mt.String())
	}
	return &item.Image{Data: data, Filename: header.Filename, ContentType: mt.String()}, nil
}

func (h *ItemHandler) sizeMessage() string {
	return fmt.Sprintf("image must be at most %d bytes", h.maxImageBytes)
}
