package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/go-chi/chi/v5"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.UserCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	u, err := s.users.Register(ctx, req)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.UserLogin
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	tokens, err := s.users.Login(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			err = ErrUnauthorized.WithMessage("Incorrect email or password")
		}
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTokenResponse(tokens.AccessToken, tokens.RefreshToken))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTokenResponse(tokens.AccessToken, tokens.RefreshToken))
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		writeError(ctx, s.logger, w, ErrNotFound.WithMessage("User not found"))
		return
	}

	_, err = s.users.Verify(ctx, id)
	switch {
	case errors.Is(err, common.ErrorAlreadyVerified):
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email already verified"})
	case errors.Is(err, common.ErrorNotFound):
		writeError(ctx, s.logger, w, ErrNotFound.WithMessage("User not found"))
	case err != nil:
		writeError(ctx, s.logger, w, err)
	default:
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
	}
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		writeError(ctx, s.logger, w, ErrUnauthorized)
		return
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// token outlived its account
			err = ErrUnauthorized
		}
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserResponse(u))
}
