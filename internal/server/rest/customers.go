package rest

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
	"github.com/go-chi/chi/v5"
)

// DefaultListLimit applies when a listing request has no limit parameter.
const DefaultListLimit = 100

// parseFilter reads search, skip and limit from the query string. A zero
// defaultLimit marks an unbounded route, where limit=0 also means "all";
// bounded routes reject a limit below 1.
func parseFilter(r *http.Request, defaultLimit int) (models.CustomerFilter, error) {
	q := r.URL.Query()
	f := models.CustomerFilter{Search: q.Get("search"), Limit: defaultLimit}

	var errs validation.Errors
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "skip", Error: "must be an integer"})
		}
		f.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, validation.FieldError{Field: "limit", Error: "must be an integer"})
		case defaultLimit > 0 && n < 1:
			errs = append(errs, validation.FieldError{Field: "limit", Error: "must be greater than 0"})
		}
		f.Limit = n
	}
	if len(errs) > 0 {
		return f, errs
	}
	return f, nil
}

func customerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, ErrNotFound.WithMessage("Customer not found")
	}
	return id, nil
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r, DefaultListLimit)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	cs, err := s.customers.List(ctx, f)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCustomerResponses(cs))
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CustomerCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	c, err := s.customers.Create(ctx, req)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewCustomerResponse(c))
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	c, err := s.customers.Get(ctx, id)
	if err != nil {
		writeError(ctx, s.logger, w, notFoundAs(err, "Customer not found"))
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCustomerResponse(c))
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	var req dto.CustomerUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	c, err := s.customers.Update(ctx, id, req)
	if err != nil {
		writeError(ctx, s.logger, w, notFoundAs(err, "Customer not found"))
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCustomerResponse(c))
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	if err := s.customers.Delete(ctx, id); err != nil {
		writeError(ctx, s.logger, w, notFoundAs(err, "Customer not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// exportCustomers renders the whole CSV before any header is written.
// Without a limit parameter every matching customer is exported.
func (s *Server) exportCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r, 0)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.customers.ExportCSV(ctx, &buf, f); err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) publishExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r, 0)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	out, err := s.customers.PublishExport(ctx, f)
	if err != nil {
		writeError(ctx, s.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExportResponse{Key: out.Key, URL: out.URL, ExpiresAt: out.ExpiresAt})
}
