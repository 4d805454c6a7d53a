// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/logging"
	"github.com/tomtom215/xrecommender/internal/models"
)

// BookResponse is a book with its keyword texts resolved.
type BookResponse struct {
	*models.Book
	Keywords []models.Keyword `json:"keywords"`
}

// GetBook returns one catalogue entry with its keywords.
//
// @Summary Get a book
// @Tags Catalogue
// @Produce json
// @Param bookID path int true "Book ID"
// @Success 200 {object} models.APIResponse{data=BookResponse}
// @Failure 404 {object} models.APIResponse "Unknown book"
// @Router /books/{bookID} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bookID, err := parseIDParam(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	book, err := h.db.GetBook(r.Context(), bookID)
	if err != nil {
		respondDomainError(w, r, err, "load book")
		return
	}

	h.respondBook(w, r, http.StatusOK, book, start)
}

// CreateBook adds a catalogue entry with its fixed embedding. Keywords are
// created on first use and attached in the same call.
//
// @Summary Add a book
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param body body CreateBookRequest true "Book with embedding"
// @Success 201 {object} models.APIResponse{data=BookResponse}
// @Failure 400 {object} models.APIResponse "Invalid book or embedding dimension"
// @Router /books [post]
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateBookRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	emb := embedding.Vector(req.Embedding)
	// Checked up front so a rejected book leaves no orphan keywords behind.
	if err := emb.CheckDim(h.db.Dimension()); err != nil {
		respondDomainError(w, r, err, "create book")
		return
	}

	ctx := r.Context()
	keywords, err := h.ensureKeywords(ctx, req.Keywords)
	if err != nil {
		respondDomainError(w, r, err, "create keywords")
		return
	}

	book := &models.Book{
		Title:       req.Title,
		Authors:     req.Authors,
		Year:        req.Year,
		ISBN:        req.ISBN,
		Cover:       req.Cover,
		Description: req.Description,
		KeywordIDs:  keywordIDs(keywords),
		Embedding:   emb,
	}
	if err := h.db.CreateBook(ctx, book); err != nil {
		respondDomainError(w, r, err, "create book")
		return
	}

	logging.Ctx(ctx).Info().
		Int("book_id", book.ID).
		Int("keywords", len(book.KeywordIDs)).
		Msg("book created")

	h.respondBook(w, r, http.StatusCreated, book, start)
}

// AttachBookKeywords adds keywords to an existing book. Keywords the book
// already carries are ignored.
//
// @Summary Tag a book
// @Tags Catalogue
// @Accept json
// @Produce json
// @Param bookID path int true "Book ID"
// @Param body body AttachKeywordsRequest true "Keyword texts"
// @Success 200 {object} models.APIResponse{data=BookResponse}
// @Failure 404 {object} models.APIResponse "Unknown book"
// @Router /books/{bookID}/keywords [post]
func (h *Handler) AttachBookKeywords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bookID, err := parseIDParam(r, "bookID")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	var req AttachKeywordsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	ctx := r.Context()
	if _, err := h.db.GetBook(ctx, bookID); err != nil {
		respondDomainError(w, r, err, "load book")
		return
	}
	keywords, err := h.ensureKeywords(ctx, req.Keywords)
	if err != nil {
		respondDomainError(w, r, err, "create keywords")
		return
	}
	if err := h.db.AttachKeywords(ctx, bookID, keywordIDs(keywords)); err != nil {
		respondDomainError(w, r, err, "attach keywords")
		return
	}

	book, err := h.db.GetBook(ctx, bookID)
	if err != nil {
		respondDomainError(w, r, err, "load book")
		return
	}
	h.respondBook(w, r, http.StatusOK, book, start)
}

func (h *Handler) ensureKeywords(ctx context.Context, words []string) ([]models.Keyword, error) {
	keywords := make([]models.Keyword, 0, len(words))
	for _, word := range words {
		kw, err := h.db.EnsureKeyword(ctx, word)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, nil
}

func keywordIDs(keywords []models.Keyword) []int {
	ids := make([]int, len(keywords))
	for i, kw := range keywords {
		ids[i] = kw.ID
	}
	return ids
}

func (h *Handler) respondBook(w http.ResponseWriter, r *http.Request, status int, book *models.Book, start time.Time) {
	byBook, err := h.db.KeywordsForBooks(r.Context(), []int{book.ID})
	if err != nil {
		respondDomainError(w, r, err, "load keywords")
		return
	}
	respondSuccess(w, status, BookResponse{Book: book, Keywords: byBook[book.ID]}, start, false)
}
