package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a server-assigned identifier. The service sends ids either as JSON
// strings or as integers; both decode to the same opaque string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unmarshal id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("unmarshal id: %q is not an integer", n.String())
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// State is the server-reported lifecycle state of a job.
type State string

const (
	StatePending    State = "PENDING"
	StateProcessing State = "PROCESSING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// UnmarshalJSON accepts states in any letter case.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	if raw == nil {
		*s = ""
		return nil
	}
	*s = State(strings.ToUpper(strings.TrimSpace(*raw)))
	return nil
}

// Known reports whether s is one of the four lifecycle states.
func (s State) Known() bool {
	switch s {
	case StatePending, StateProcessing, StateCompleted, StateFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions occur.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Celebrity is an entry of the comparison catalog.
type Celebrity struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Photo       string `json:"photo,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Description string `json:"description,omitempty"`
	DetailURL   string `json:"detail_url,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
	Works       string `json:"works,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Match is one celebrity and its similarity score, 0-100.
type Match struct {
	Celebrity  Celebrity `json:"celebrity"`
	Similarity float64   `json:"similarity"`
}

// Result is the comparison artifact of a completed job.
type Result struct {
	Details []Match `json:"details"`
}

// Best returns the highest scoring match.
func (r *Result) Best() (Match, bool) {
	if r == nil || len(r.Details) == 0 {
		return Match{}, false
	}
	best := r.Details[0]
	for _, m := range r.Details[1:] {
		if m.Similarity > best.Similarity {
			best = m
		}
	}
	return best, true
}

// Job is the client's transient copy of a server-tracked comparison request.
type Job struct {
	ID        ID      `json:"id"`
	SessionID string  `json:"session_id,omitempty"`
	State     State   `json:"state,omitempty"`
	Progress  int     `json:"progress"`
	Result    *Result `json:"result,omitempty"`
	IsShared  bool    `json:"is_shared"`
	UserPhoto string  `json:"user_photo,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	// Error is the failure reason of a FAILED job.
	Error string `json:"error,omitempty"`
}

// UnmarshalJSON also accepts the legacy envelope, which reports the state
// under "status" and the matches as top-level "details".
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var raw struct {
		plain
		Status  State   `json:"status"`
		Details []Match `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*j = Job(raw.plain)
	if j.State == "" {
		j.State = raw.Status
	}
	if j.Result == nil && raw.Details != nil {
		j.Result = &Result{Details: raw.Details}
	}
	return nil
}

// Done reports whether the job needs no more polling. A legacy envelope
// without a state is done when it carries a result.
func (j *Job) Done() bool {
	if j.State == "" {
		return j.Result != nil
	}
	return j.State.Terminal()
}

// settle normalizes a decoded job before it is returned.
func (j *Job) settle(jobID string) {
	if j.ID == "" {
		j.ID = ID(jobID)
	}
	j.Progress = min(max(j.Progress, 0), 100)
	if j.State != "" && j.State != StateCompleted {
		j.Result = nil
	}
}

// UploadRequest is one photo submission.
type UploadRequest struct {
	PhotoBytes []byte
	// FileName is sent with the photo part; defaults to "photo".
	FileName  string
	SessionID string
}

// ShareConfirmation is the service's answer to a share request.
type ShareConfirmation struct {
	ID       ID     `json:"id"`
	IsShared bool   `json:"is_shared"`
	ShareURL string `json:"share_url,omitempty"`

	// declined is set when the body explicitly reported is_shared=false.
	declined bool
}

// UnmarshalJSON treats a confirmation without is_shared as shared.
func (s *ShareConfirmation) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       ID     `json:"id"`
		IsShared *bool  `json:"is_shared"`
		ShareURL string `json:"share_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	s.IsShared = raw.IsShared == nil || *raw.IsShared
	s.declined = !s.IsShared
	s.ShareURL = raw.ShareURL
	return nil
}

// list decodes either a bare JSON array or a paginated envelope.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var page struct {
		Count   int    `json:"count"`
		Next    string `json:"next"`
		Results *[]T   `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	if page.Results == nil {
		return fmt.Errorf("list body has neither an array nor results")
	}
	*l = *page.Results
	return nil
}
