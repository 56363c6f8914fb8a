package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
)

const maxBodyBytes = 1 << 20

var errRateLimited = errors.New("rate limit exceeded")

func (s *Server) issueDestination(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := SellerID(r.Context())

	d, err := s.uploads.IssueDestination(r.Context(), sellerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, authority.DestinationResponse{URL: d.URL, Key: d.Key, ExpiresAt: d.ExpiresAt})
}

func (s *Server) getImages(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := SellerID(r.Context())

	l, err := s.listings.Images(r.Context(), sellerID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, common.ImageList{Images: l.Images})
}

func (s *Server) putImages(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := SellerID(r.Context())

	var body common.ImageList
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, r, errors.Join(common.ErrValidation, err))
		return
	}
	if body.Images == nil {
		body.Images = []string{}
	}

	if err := s.listings.ReplaceImages(r.Context(), sellerID, r.PathValue("id"), body.Images); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTooManyImages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(code)
	}
	s.writeJSON(w, r, code, common.ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), "encode response", "error", err)
	}
}
