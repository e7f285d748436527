package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/placement-portal/internal/db"
	"github.com/jonathan/placement-portal/internal/types"
)

// maxDraftBytes caps the addCompany request body.
const maxDraftBytes = 1 << 20

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// handleScrapeCompanyProfile scrapes the LinkedIn page for ?profileId=.
// Concurrent requests for one identifier share a single scrape, which is not
// cancelled when the first caller disconnects.
func (s *Server) handleScrapeCompanyProfile(w http.ResponseWriter, r *http.Request) {
	profileID := strings.TrimSpace(r.URL.Query().Get("profileId"))
	if profileID == "" {
		s.writeError(w, r, &ErrBadRequest{Message: "profileId is required"})
		return
	}

	v, err, _ := s.scrapes.Do(profileID, func() (any, error) {
		return s.scraper.Scrape(context.WithoutCancel(r.Context()), profileID)
	})
	if err != nil {
		s.writeError(w, r, &ErrScrape{ProfileID: profileID, Err: err})
		return
	}

	s.jsonResponse(w, http.StatusOK, v.(*types.ScrapedProfile))
}

// handleAddCompany validates and stores a company draft
func (s *Server) handleAddCompany(w http.ResponseWriter, r *http.Request) {
	var draft types.CompanyDraft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBytes))
	if err := dec.Decode(&draft); err != nil {
		s.writeError(w, r, &ErrBadRequest{Message: "invalid JSON body"})
		return
	}
	draft.TrimSpace()

	if fieldErrors := draft.Validate(); len(fieldErrors) > 0 {
		s.writeError(w, r, &ErrValidation{Errors: fieldErrors})
		return
	}

	company, err := s.store.CreateCompany(r.Context(), &draft)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateName):
			err = &ErrCompanyExists{Name: draft.Name}
		case errors.Is(err, db.ErrEmptyName):
			err = &ErrValidation{Errors: []types.FieldError{{Param: types.FieldName, Error: err.Error()}}}
		}
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, company)
}

// handleListCompanies lists stored companies, newest first
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 100)
	offset := parseQueryInt(r, "offset", 0, 0)

	companies, err := s.store.ListCompanies(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetCompany retrieves a company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, &ErrBadRequest{Message: "invalid company ID"})
		return
	}

	company, err := s.store.GetCompanyByID(r.Context(), companyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if company == nil {
		s.writeError(w, r, &ErrCompanyNotFound{ID: companyID})
		return
	}

	s.jsonResponse(w, http.StatusOK, company)
}
