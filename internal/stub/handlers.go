package stub

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
)

const (
	errJobNotFound       = "comparison not found"
	errNoMatch           = "no celebrity in the catalog matched the photo"
	errNoFace            = "no face detected, upload a photo with a clearly visible face"
	errCelebrityNotFound = "celebrity not found"
	fieldRequired        = "This field is required."
)

type historyPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []compare.Job `json:"results"`
}

type shareResponse struct {
	ID       string `json:"id"`
	IsShared bool   `json:"is_shared"`
	ShareURL string `json:"share_url"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.StubMaxUploadSize)
	if err := r.ParseMultipartForm(constants.StubMaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondFieldError(w, "photo", "The submitted file is too large.")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		respondFieldError(w, "session_id", fieldRequired)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondFieldError(w, "photo", "No file was submitted.")
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read photo")
		return
	}
	if len(photo) == 0 {
		respondFieldError(w, "photo", "The submitted file is empty.")
		return
	}

	matches := rankMatches(photo, s.catalog)
	if len(matches) == 0 {
		respondError(w, http.StatusNotFound, errNoMatch)
		return
	}

	job := &stubJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: s.clock.Now(),
		Matches:   matches,
	}
	job.UserPhoto = "/media/user_photos/" + job.ID + ".jpg"
	if !strings.HasPrefix(http.DetectContentType(photo), "image/") {
		job.FailReason = errNoFace
	}

	view := s.jobs.CreateJob(job)
	s.logger.Debug("comparison job created", "id", job.ID, "session", sanitizeForLog(sessionID), "bytes", len(photo))
	respondJSON(w, http.StatusCreated, view)
}

// sessionParam reads session_id from the query, reporting a field error when missing.
func sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondFieldError(w, "session_id", fieldRequired)
		return "", false
	}
	return sessionID, true
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	job, ok := s.jobs.GetJob(chi.URLParam(r, "id"), sessionID)
	if !ok {
		respondError(w, http.StatusNotFound, errJobNotFound)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	job, ok := s.jobs.GetJob(chi.URLParam(r, "id"), sessionID)
	if !ok {
		respondError(w, http.StatusNotFound, errJobNotFound)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(w, r)
	if !ok {
		return
	}
	jobs := s.jobs.ListJobs(sessionID)
	respondJSON(w, http.StatusOK, historyPage{Count: len(jobs), Results: jobs})
}

func (s *Server) share(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	sessionID := strings.TrimSpace(body.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(r.URL.Query().Get("session_id"))
	}
	if sessionID == "" {
		respondFieldError(w, "session_id", fieldRequired)
		return
	}

	id := chi.URLParam(r, "id")
	if !s.jobs.Share(id, sessionID) {
		respondError(w, http.StatusNotFound, errJobNotFound)
		return
	}
	respondJSON(w, http.StatusOK, shareResponse{
		ID:       id,
		IsShared: true,
		ShareURL: "/share/" + id,
	})
}

func (s *Server) listCelebrities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) getCelebrity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, c := range s.catalog {
		if string(c.ID) == id {
			respondJSON(w, http.StatusOK, c)
			return
		}
	}
	respondJSON(w, http.StatusNotFound, map[string]string{"detail": errCelebrityNotFound})
}
