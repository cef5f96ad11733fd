package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slurp-civic/slurp-api/internal/domain"
	"github.com/slurp-civic/slurp-api/internal/engine"
	"github.com/slurp-civic/slurp-api/internal/locations"
	"github.com/slurp-civic/slurp-api/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ratingSubmitRequest struct {
	UserID            string  `json:"userId"`
	ActorName         string  `json:"actorName"`
	Governorate       string  `json:"governorate"`
	Delegation        string  `json:"delegation"`
	MacroSector       string  `json:"macroSector"`
	MesoSector        string  `json:"mesoSector"`
	IndicatorCategory string  `json:"indicatorCategory"`
	IndicatorType     string  `json:"indicatorType"`
	Rating            float64 `json:"rating"`
	Comment           string  `json:"comment"`
}

type ratingResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"userId"`
	ActorName         string  `json:"actorName"`
	Governorate       string  `json:"governorate"`
	Delegation        string  `json:"delegation"`
	MacroSector       string  `json:"macroSector"`
	MesoSector        string  `json:"mesoSector"`
	IndicatorCategory string  `json:"indicatorCategory"`
	IndicatorType     string  `json:"indicatorType"`
	Rating            float64 `json:"rating"`
	Comment           string  `json:"comment,omitempty"`
	Timestamp         string  `json:"timestamp"`
}

type namedAverageResponse struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

type dashboardResponse struct {
	GlobalAverage     float64                `json:"globalAverage"`
	TerritoryAverages []namedAverageResponse `json:"territoryAverages"`
	SectorAverages    []namedAverageResponse `json:"sectorAverages"`
	IndicatorAverages map[string]float64     `json:"indicatorAverages"`
	TopActors         []namedAverageResponse `json:"topActors"`
	RecentRatings     []ratingResponse       `json:"recentRatings"`
}

type optionListResponse struct {
	Values  []string `json:"values"`
	Enabled bool     `json:"enabled"`
}

type exploreResponse struct {
	Options struct {
		Governorates        optionListResponse `json:"governorates"`
		Delegations         optionListResponse `json:"delegations"`
		MacroSectors        optionListResponse `json:"macroSectors"`
		MesoSectors         optionListResponse `json:"mesoSectors"`
		IndicatorCategories optionListResponse `json:"indicatorCategories"`
		IndicatorTypes      optionListResponse `json:"indicatorTypes"`
		Actors              optionListResponse `json:"actors"`
	} `json:"options"`
	DelegationAverages map[string]float64 `json:"delegationAverages"`
	MapData            map[string]float64 `json:"mapData"`
	Ratings            []ratingResponse   `json:"ratings"`
}

type profileResponse struct {
	UserID          string             `json:"userId"`
	Email           string             `json:"email,omitempty"`
	DisplayName     string             `json:"displayName,omitempty"`
	MemberSince     string             `json:"memberSince,omitempty"`
	IsEmailVerified bool               `json:"isEmailVerified"`
	TotalRatings    int                `json:"totalRatings"`
	AverageRating   float64            `json:"averageRating"`
	BestActor       string             `json:"bestActor"`
	WorstActor      string             `json:"worstActor"`
	SectorAverages  map[string]float64 `json:"sectorAverages"`
	Ratings         []ratingResponse   `json:"ratings"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req ratingSubmitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.ActorName) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "actorName is required")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be within [0, 5]")
		return
	}

	rating, err := s.repo.Ratings.Append(r.Context(), repository.RatingCreateParams{
		UserID:            strings.TrimSpace(req.UserID),
		ActorName:         strings.TrimSpace(req.ActorName),
		Governorate:       strings.TrimSpace(req.Governorate),
		Delegation:        strings.TrimSpace(req.Delegation),
		MacroSector:       strings.TrimSpace(req.MacroSector),
		MesoSector:        strings.TrimSpace(req.MesoSector),
		IndicatorCategory: strings.TrimSpace(req.IndicatorCategory),
		IndicatorType:     strings.TrimSpace(req.IndicatorType),
		Rating:            req.Rating,
		Comment:           req.Comment,
	})
	if err != nil {
		s.logger.Printf("append rating error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to store rating")
		return
	}

	s.respondJSON(w, http.StatusCreated, toRatingResponse(rating))
}

func (s *Server) handleRecentRatings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if val := strings.TrimSpace(r.URL.Query().Get("limit")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed < 0 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value")
			return
		}
		limit = parsed
	}

	recent, err := s.assembler.RecentRatings(r.Context(), limit)
	if err != nil {
		s.logger.Printf("recent ratings error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load ratings")
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingResponses(recent))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.assembler.GlobalSummary(r.Context())
	if err != nil {
		s.logger.Printf("dashboard error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load ratings")
		return
	}

	resp := dashboardResponse{
		GlobalAverage:     summary.GlobalAverage,
		TerritoryAverages: toNamedAverages(summary.TerritoryAverages),
		SectorAverages:    toNamedAverages(summary.SectorAverages),
		IndicatorAverages: summary.IndicatorAverages,
		RecentRatings:     toRatingResponses(summary.RecentRatings),
	}
	resp.TopActors = make([]namedAverageResponse, 0, len(summary.TopActors))
	for _, actor := range summary.TopActors {
		resp.TopActors = append(resp.TopActors, namedAverageResponse{Name: actor.Name, Average: actor.Average})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	filter, err := buildFilterState(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	view, err := s.assembler.FilteredView(r.Context(), filter)
	if err != nil {
		s.logger.Printf("explore error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load ratings")
		return
	}

	var resp exploreResponse
	resp.Options.Governorates = toOptionList(view.Options.Governorates)
	resp.Options.Delegations = toOptionList(view.Options.Delegations)
	resp.Options.MacroSectors = toOptionList(view.Options.MacroSectors)
	resp.Options.MesoSectors = toOptionList(view.Options.MesoSectors)
	resp.Options.IndicatorCategories = toOptionList(view.Options.IndicatorCategories)
	resp.Options.IndicatorTypes = toOptionList(view.Options.IndicatorTypes)
	resp.Options.Actors = toOptionList(view.Options.Actors)
	resp.DelegationAverages = view.DelegationAverages
	resp.MapData = view.MapData
	resp.Ratings = toRatingResponses(view.FilteredRatings)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActors(w http.ResponseWriter, r *http.Request) {
	mesoSector := strings.TrimSpace(r.URL.Query().Get("mesoSector"))
	if mesoSector == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "mesoSector is required")
		return
	}

	actors, err := s.repo.Ratings.ActorsBySector(r.Context(), mesoSector)
	if err != nil {
		s.logger.Printf("list actors error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load actors")
		return
	}
	if actors == nil {
		actors = []string{}
	}
	s.respondJSON(w, http.StatusOK, actors)
}

func (s *Server) handleGovernorates(w http.ResponseWriter, r *http.Request) {
	dataset, err := s.locations.Fetch(r.Context())
	if err != nil {
		s.logger.Printf("fetch locations error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load locations")
		return
	}
	s.respondJSON(w, http.StatusOK, dataset.GovernorateNames())
}

func (s *Server) handleDelegations(w http.ResponseWriter, r *http.Request) {
	name, err := decodeGovernorateParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	dataset, err := s.locations.Fetch(r.Context())
	if err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("fetch locations error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load locations")
		return
	}

	delegations, ok := dataset.DelegationsFor(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	s.respondJSON(w, http.StatusOK, delegations)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing userID parameter")
		return
	}

	summary, err := s.assembler.UserSummary(r.Context(), userID)
	if err != nil {
		s.logger.Printf("profile error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Failed to load profile")
		return
	}

	resp := profileResponse{
		UserID:          summary.UserID,
		Email:           summary.Email,
		DisplayName:     summary.DisplayName,
		IsEmailVerified: summary.IsEmailVerified,
		TotalRatings:    summary.TotalRatings,
		AverageRating:   summary.AverageRating,
		BestActor:       summary.BestActor,
		WorstActor:      summary.WorstActor,
		SectorAverages:  summary.SectorAverages,
		Ratings:         toRatingResponses(summary.Ratings),
	}
	if !summary.MemberSince.IsZero() {
		resp.MemberSince = summary.MemberSince.Format("2006-01-02")
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// buildFilterState parses the explore query parameters into a filter state.
// Selections apply through the Select methods in parent-before-child order so
// the cascade semantics match interactive use.
func buildFilterState(query url.Values) (engine.FilterState, error) {
	filter := engine.NewFilterState()

	if val := strings.TrimSpace(query.Get("governorate")); val != "" {
		filter.SelectGovernorate(val)
	}
	if val := strings.TrimSpace(query.Get("delegation")); val != "" {
		filter.SelectDelegation(val)
	}
	if val := strings.TrimSpace(query.Get("macroSector")); val != "" {
		filter.SelectMacroSector(val)
	}
	if val := strings.TrimSpace(query.Get("mesoSector")); val != "" {
		filter.SelectMesoSector(val)
	}
	if val := strings.TrimSpace(query.Get("actor")); val != "" {
		filter.SelectActor(val)
	}
	if val := strings.TrimSpace(query.Get("indicatorCategory")); val != "" {
		filter.SelectIndicatorCategory(val)
	}
	if val := strings.TrimSpace(query.Get("indicatorType")); val != "" {
		filter.SelectIndicatorType(val)
	}
	if val := strings.TrimSpace(query.Get("timeRange")); val != "" {
		tr, err := engine.ParseTimeRange(val)
		if err != nil {
			return filter, fmt.Errorf("invalid timeRange value")
		}
		filter.SetTimeRange(tr)
	}

	minRating, maxRating := filter.MinRating, filter.MaxRating
	if val := strings.TrimSpace(query.Get("minRating")); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid minRating value")
		}
		minRating = parsed
	}
	if val := strings.TrimSpace(query.Get("maxRating")); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid maxRating value")
		}
		maxRating = parsed
	}
	if minRating > maxRating {
		return filter, fmt.Errorf("minRating cannot exceed maxRating")
	}
	filter.SetRatingRange(minRating, maxRating)

	return filter, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}

func decodeGovernorateParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "governorate")
	if raw == "" {
		return "", fmt.Errorf("missing governorate parameter")
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid governorate parameter")
	}
	return name, nil
}

func toRatingResponse(rating domain.Rating) ratingResponse {
	return ratingResponse{
		ID:                rating.ID,
		UserID:            rating.UserID,
		ActorName:         rating.ActorName,
		Governorate:       rating.Governorate,
		Delegation:        rating.Delegation,
		MacroSector:       rating.MacroSector,
		MesoSector:        rating.MesoSector,
		IndicatorCategory: rating.IndicatorCategory,
		IndicatorType:     rating.IndicatorType,
		Rating:            rating.Rating,
		Comment:           rating.Comment,
		Timestamp:         rating.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func toRatingResponses(ratings []domain.Rating) []ratingResponse {
	out := make([]ratingResponse, 0, len(ratings))
	for _, rating := range ratings {
		out = append(out, toRatingResponse(rating))
	}
	return out
}

func toNamedAverages(averages []engine.DimensionAverage) []namedAverageResponse {
	out := make([]namedAverageResponse, 0, len(averages))
	for _, avg := range averages {
		out = append(out, namedAverageResponse{Name: avg.Name, Average: avg.Average})
	}
	return out
}

func toOptionList(list engine.OptionList) optionListResponse {
	values := list.Values
	if values == nil {
		values = []string{}
	}
	return optionListResponse{Values: values, Enabled: list.Enabled}
}
