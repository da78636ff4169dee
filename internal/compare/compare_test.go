package compare

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

func setupMockServer(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	tc, err := transport.New(transport.Options{BaseURL: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return New(tc), &hits
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestSubmit(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/compare/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "sess-1", r.FormValue("session_id"))
		_, header, err := r.FormFile("photo")
		require.NoError(t, err)
		assert.Equal(t, "face.png", header.Filename)
		writeJSON(w, http.StatusCreated, `{"id":"job_1","state":"PENDING","session_id":"sess-1"}`)
	})

	var last atomic.Int32
	job, err := c.Submit(context.Background(), UploadRequest{
		PhotoBytes: []byte("\x89PNG\r\n\x1a\n...."),
		FileName:   "face.png",
		SessionID:  "sess-1",
	}, func(p int) { last.Store(int32(p)) })
	require.NoError(t, err)
	assert.Equal(t, ID("job_1"), job.ID)
	assert.Equal(t, StatePending, job.State)
	assert.Nil(t, job.Result)
	assert.Equal(t, int32(100), last.Load())
}

func TestSubmit_MissingSessionNeverSends(t *testing.T) {
	c, hits := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"job_1","state":"PENDING"}`)
	})

	_, err := c.Submit(context.Background(), UploadRequest{PhotoBytes: []byte("x")}, nil)
	assert.Equal(t, apierr.KindRequestConfiguration, apierr.KindOf(err))
	assert.Zero(t, hits.Load())
}

func TestSubmit_NoMatchIsApplicationError(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"未找到匹配的名人"}`)
	})

	_, err := c.Submit(context.Background(), UploadRequest{PhotoBytes: []byte("x"), SessionID: "s"}, nil)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindApplication, e.Kind)
	assert.Equal(t, "未找到匹配的名人", e.Message)
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
}

func TestSubmit_EnvelopeWithoutID(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"state":"PENDING"}`)
	})

	_, err := c.Submit(context.Background(), UploadRequest{PhotoBytes: []byte("x"), SessionID: "s"}, nil)
	assert.Equal(t, apierr.KindApplication, apierr.KindOf(err))
	assert.ErrorIs(t, err, apierr.ErrInvalidEnvelope)
}

func TestSubmit_FieldErrors(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"photo":["The submitted file is empty."]}`)
	})

	_, err := c.Submit(context.Background(), UploadRequest{SessionID: "s"}, nil)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindApplication, e.Kind)
	assert.Equal(t, "photo: The submitted file is empty.", e.Message)
}

func TestStatus(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/compare/status/job_1/", r.URL.Path)
		assert.Equal(t, "sess-1", r.URL.Query().Get("session_id"))
		writeJSON(w, http.StatusOK, `{"id":"job_1","state":"processing","progress":40,"result":{"details":[]}}`)
	})

	job, err := c.Status(context.Background(), "job_1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, job.State)
	assert.Equal(t, 40, job.Progress)
	assert.Nil(t, job.Result)
}

func TestStatus_FillsMissingID(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"state":"PENDING"}`)
	})

	job, err := c.Status(context.Background(), "job_9", "s")
	require.NoError(t, err)
	assert.Equal(t, ID("job_9"), job.ID)
}

func TestStatus_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apierr.Kind
	}{
		{"unknown state", http.StatusOK, `{"id":"job_1","state":"QUEUED"}`, apierr.KindApplication},
		{"missing state", http.StatusOK, `{"id":"job_1","progress":10}`, apierr.KindApplication},
		{"other job", http.StatusOK, `{"id":"job_2","state":"PENDING"}`, apierr.KindApplication},
		{"id differs in case", http.StatusOK, `{"id":"JOB_1","state":"PENDING"}`, apierr.KindApplication},
		{"foreign session", http.StatusOK, `{"id":"job_1","state":"PENDING","session_id":"other"}`, apierr.KindAuthorization},
		{"not found", http.StatusNotFound, `{"error":"未找到指定ID的比对结果"}`, apierr.KindAuthorization},
		{"forbidden", http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`, apierr.KindAuthorization},
		{"server error", http.StatusInternalServerError, `<html>oops</html>`, apierr.KindApplication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			job, err := c.Status(context.Background(), "job_1", "sess-1")
			assert.Nil(t, job)
			e, ok := apierr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestStatus_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	tc, err := transport.New(transport.Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = New(tc).Status(context.Background(), "job_1", "s")
	assert.ErrorIs(t, err, apierr.ErrTimeout)
}

func TestStatus_MissingArguments(t *testing.T) {
	c, hits := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Status(context.Background(), "", "s")
	assert.Equal(t, apierr.KindRequestConfiguration, apierr.KindOf(err))
	_, err = c.Status(context.Background(), "job_1", "")
	assert.Equal(t, apierr.KindRequestConfiguration, apierr.KindOf(err))
	assert.Zero(t, hits.Load())
}

func TestResult_ExtraParams(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/compare/job_1/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, []string{"sess-1"}, q["session_id"])
		assert.Equal(t, "zh", q.Get("lang"))
		writeJSON(w, http.StatusOK, `{"id":"job_1","state":"COMPLETED","progress":100,
			"result":{"details":[{"celebrity":{"id":1,"name":"Ada Lovelace"},"similarity":88.1}]}}`)
	})

	extra := url.Values{"lang": {"zh"}, "session_id": {"hijack"}}
	job, err := c.Result(context.Background(), "job_1", "sess-1", extra)
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.Len(t, job.Result.Details, 1)
	assert.Equal(t, []string{"hijack"}, extra["session_id"], "caller params are not modified")
}

func TestResult_NotTerminal(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"job_1","state":"PROCESSING","progress":40,"details":[{"similarity":1}]}`)
	})

	job, err := c.Result(context.Background(), "job_1", "s", nil)
	require.NoError(t, err)
	assert.Nil(t, job.Result)
	assert.False(t, job.Done())
}

func TestResult_LegacyEnvelope(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"job_1","details":[{"celebrity":{"id":1,"name":"A"},"similarity":70}]}`)
	})

	job, err := c.Result(context.Background(), "job_1", "s", nil)
	require.NoError(t, err)
	require.NotNil(t, job.Result)
	assert.True(t, job.Done())
}

func TestResult_Unauthorized(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`)
	})

	_, err := c.Result(context.Background(), "job_1", "s", nil)
	assert.ErrorIs(t, err, apierr.ErrAuthorization)
}

func TestHistory(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/compare/history/", r.URL.Path)
		assert.Equal(t, "sess-1", r.URL.Query().Get("session_id"))
		writeJSON(w, http.StatusOK, `[
			{"id":"old","session_id":"sess-1","state":"COMPLETED","created_at":"2024-05-01T10:00:00Z"},
			{"id":"foreign","session_id":"sess-2","state":"COMPLETED","created_at":"2024-05-04T10:00:00Z"},
			{"id":"new","session_id":"sess-1","state":"PENDING","created_at":"2024-05-03T10:00:00Z"},
			{"id":"old","session_id":"sess-1","state":"COMPLETED","created_at":"2024-05-01T10:00:00Z"},
			{"id":"mid","state":"FAILED","created_at":"2024-05-02T10:00:00Z","error":"no face"}
		]`)
	})

	jobs, err := c.History(context.Background(), "sess-1")
	require.NoError(t, err)
	ids := make([]ID, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	assert.Equal(t, []ID{"new", "mid", "old"}, ids)
	assert.Equal(t, "no face", jobs[1].Error)
}

func TestHistory_Paginated(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"count":2,"next":null,"previous":null,"results":[{"id":1},{"id":2}]}`)
	})

	jobs, err := c.History(context.Background(), "s")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, ID("1"), jobs[0].ID)
}

func TestHistory_Empty(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	jobs, err := c.History(context.Background(), "s")
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestShare(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/compare/share/job_1/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-1", body["session_id"])
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	})

	conf, err := c.Share(context.Background(), "job_1", "sess-1")
	require.NoError(t, err)
	assert.True(t, conf.IsShared)
	assert.Equal(t, ID("job_1"), conf.ID)
}

func TestShare_EmptyBodyConfirms(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusOK, http.StatusCreated} {
		c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		conf, err := c.Share(context.Background(), "job_1", "sess-1")
		require.NoError(t, err, "status %d", status)
		assert.True(t, conf.IsShared)
		assert.Equal(t, ID("job_1"), conf.ID)
	}
}

func TestShare_Rejections(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"job_1","is_shared":false}`)
	})
	_, err := c.Share(context.Background(), "job_1", "s")
	assert.Equal(t, apierr.KindApplication, apierr.KindOf(err))

	c, _ = setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"error":"not yours"}`)
	})
	_, err = c.Share(context.Background(), "job_1", "s")
	assert.Equal(t, apierr.KindAuthorization, apierr.KindOf(err))
}

func TestCelebrities(t *testing.T) {
	c, _ := setupMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/celebrities/":
			writeJSON(w, http.StatusOK, `[{"id":1,"name":"Ada Lovelace","photo_url":"/a.jpg"},{"id":2,"name":"Alan Turing"}]`)
		case "/api/celebrities/2/":
			writeJSON(w, http.StatusOK, `{"id":2,"name":"Alan Turing","nationality":"British"}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"detail":"Not found."}`)
		}
	})

	all, err := c.Celebrities(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/a.jpg", all[0].PhotoURL)

	one, err := c.Celebrity(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "British", one.Nationality)

	_, err = c.Celebrity(context.Background(), "9")
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindApplication, e.Kind)
	assert.Equal(t, "Not found.", e.Message)

	_, err = c.Celebrity(context.Background(), "")
	assert.Equal(t, apierr.KindRequestConfiguration, apierr.KindOf(err))
}
