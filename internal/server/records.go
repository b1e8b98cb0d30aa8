package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pokerly/internal/domain"
)

const dateLayout = "2006-01-02"

type sessionRequest struct {
	VenueID      *string `json:"venueId"`
	PlayDate     *string `json:"playDate"`
	Title        string  `json:"title"`
	SessionType  string  `json:"sessionType"`
	TotalBuyIn   *int64  `json:"totalBuyIn"`
	Prize        *int64  `json:"prize"`
	FieldEntries *int64  `json:"fieldEntries"`
	IsCollab     bool    `json:"isCollab"`
	CollabLabel  *string `json:"collabLabel"`
}

func (req *sessionRequest) toDomain(userID string) (*domain.Session, error) {
	session := &domain.Session{
		UserID:       userID,
		VenueID:      req.VenueID,
		Title:        req.Title,
		SessionType:  domain.NormalizeSessionType(req.SessionType),
		TotalBuyIn:   req.TotalBuyIn,
		Prize:        req.Prize,
		FieldEntries: req.FieldEntries,
		IsCollab:     req.IsCollab,
		CollabLabel:  req.CollabLabel,
	}

	if req.PlayDate != nil {
		d, err := time.Parse(dateLayout, *req.PlayDate)
		if err != nil {
			return nil, fmt.Errorf("playDate must be %s formatted: %w", dateLayout, err)
		}
		session.PlayDate = &d
	}

	// net profit is derived at the write boundary; the aggregators never
	// recompute it
	if req.TotalBuyIn != nil || req.Prize != nil {
		profit := domain.OrZero(req.Prize) - domain.OrZero(req.TotalBuyIn)
		session.NetProfit = &profit
	}

	return session, nil
}

type sessionResponse struct {
	ID           string  `json:"id"`
	VenueID      *string `json:"venueId"`
	PlayDate     *string `json:"playDate"`
	Title        string  `json:"title"`
	SessionType  string  `json:"sessionType"`
	TotalBuyIn   *int64  `json:"totalBuyIn"`
	Prize        *int64  `json:"prize"`
	NetProfit    *int64  `json:"netProfit"`
	FieldEntries *int64  `json:"fieldEntries"`
	IsCollab     bool    `json:"isCollab"`
	CollabLabel  *string `json:"collabLabel"`
}

func toSessionResponse(session domain.Session) sessionResponse {
	var playDate *string
	if session.PlayDate != nil {
		formatted := session.PlayDate.Format(dateLayout)
		playDate = &formatted
	}

	return sessionResponse{
		ID:           session.ID,
		VenueID:      session.VenueID,
		PlayDate:     playDate,
		Title:        session.Title,
		SessionType:  string(session.SessionType),
		TotalBuyIn:   session.TotalBuyIn,
		Prize:        session.Prize,
		NetProfit:    session.NetProfit,
		FieldEntries: session.FieldEntries,
		IsCollab:     session.IsCollab,
		CollabLabel:  session.CollabLabel,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	session, err := req.toDomain(r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	if err := s.sessionRepo.Create(r.Context(), session); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSessionResponse(*session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessionRepo.ListByUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	responses := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, toSessionResponse(session))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionRepo.GetByID(r.Context(), r.PathValue("userID"), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(*session))
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	session, err := req.toDomain(r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	session.ID = r.PathValue("id")

	if err := s.sessionRepo.Update(r.Context(), session); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(*session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionRepo.Delete(r.Context(), r.PathValue("userID"), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type journalRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	MoodScore   *int64 `json:"moodScore"`
	FocusScore  *int64 `json:"focusScore"`
	TiltScore   *int64 `json:"tiltScore"`
	EnergyScore *int64 `json:"energyScore"`
	Tags        string `json:"tags"`
}

type journalResponse struct {
	ID          string `json:"id"`
	JournalDate string `json:"journalDate"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	MoodScore   *int64 `json:"moodScore"`
	FocusScore  *int64 `json:"focusScore"`
	TiltScore   *int64 `json:"tiltScore"`
	EnergyScore *int64 `json:"energyScore"`
	Tags        string `json:"tags"`
}

func toJournalResponse(journal domain.Journal) journalResponse {
	return journalResponse{
		ID:          journal.ID,
		JournalDate: journal.JournalDate.Format(dateLayout),
		Title:       journal.Title,
		Content:     journal.Content,
		MoodScore:   journal.MoodScore,
		FocusScore:  journal.FocusScore,
		TiltScore:   journal.TiltScore,
		EnergyScore: journal.EnergyScore,
		Tags:        journal.Tags,
	}
}

func journalDateParam(r *http.Request) (time.Time, error) {
	d, err := time.Parse(dateLayout, r.PathValue("date"))
	if err != nil {
		return time.Time{}, errors.New("date must be " + dateLayout + " formatted")
	}
	return d, nil
}

func (s *Server) handleUpsertJournal(w http.ResponseWriter, r *http.Request) {
	date, err := journalDateParam(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	journal := &domain.Journal{
		UserID:      r.PathValue("userID"),
		JournalDate: date,
		Title:       req.Title,
		Content:     req.Content,
		MoodScore:   req.MoodScore,
		FocusScore:  req.FocusScore,
		TiltScore:   req.TiltScore,
		EnergyScore: req.EnergyScore,
		Tags:        req.Tags,
	}

	if err := s.journalRepo.Upsert(r.Context(), journal); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toJournalResponse(*journal))
}

func (s *Server) handleListJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := s.journalRepo.ListByUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	responses := make([]journalResponse, 0, len(journals))
	for _, journal := range journals {
		responses = append(responses, toJournalResponse(journal))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	date, err := journalDateParam(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	journal, err := s.journalRepo.GetByDate(r.Context(), r.PathValue("userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toJournalResponse(*journal))
}

func (s *Server) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	date, err := journalDateParam(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	if err := s.journalRepo.Delete(r.Context(), r.PathValue("userID"), date); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type venueRequest struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
	PointBalance int64  `json:"pointBalance"`
}

type venueResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
	VenueType    string `json:"venueType"`
	PointBalance int64  `json:"pointBalance"`
}

func toVenueResponse(venue domain.Venue) venueResponse {
	return venueResponse{
		ID:           venue.ID,
		Name:         venue.Name,
		Location:     venue.Location,
		Notes:        venue.Notes,
		VenueType:    venue.VenueType,
		PointBalance: venue.PointBalance,
	}
}

func (s *Server) handleCreateVenue(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	if req.Name == "" {
		s.writeError(w, r, badRequest(errors.New("name is required")))
		return
	}

	venue := &domain.Venue{
		UserID:       r.PathValue("userID"),
		Name:         req.Name,
		Location:     req.Location,
		Notes:        req.Notes,
		PointBalance: req.PointBalance,
	}

	if err := s.venueRepo.Create(r.Context(), venue); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toVenueResponse(*venue))
}

func (s *Server) handleListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := s.venueRepo.ListByUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	responses := make([]venueResponse, 0, len(venues))
	for _, venue := range venues {
		responses = append(responses, toVenueResponse(venue))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := s.venueRepo.GetByID(r.Context(), r.PathValue("userID"), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toVenueResponse(*venue))
}

func (s *Server) handleUpdateVenue(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	venue := &domain.Venue{
		ID:           r.PathValue("id"),
		UserID:       r.PathValue("userID"),
		Name:         req.Name,
		Location:     req.Location,
		Notes:        req.Notes,
		PointBalance: req.PointBalance,
	}

	if err := s.venueRepo.Update(r.Context(), venue); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toVenueResponse(*venue))
}

func (s *Server) handleDeleteVenue(w http.ResponseWriter, r *http.Request) {
	if err := s.venueRepo.Delete(r.Context(), r.PathValue("userID"), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
