package judge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/judge"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

func newClient(url string, timeout time.Duration) *judge.Judge0Client {
	return judge.NewJudge0Client(&config.Config{
		JudgeURL:     url,
		JudgeTimeout: timeout,
	})
}

func TestJudge0Client_Evaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/submissions", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("wait"))
		require.Equal(t, "false", r.URL.Query().Get("base64_encoded"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "fixed code", body["source_code"])
		require.EqualValues(t, 71, body["language_id"])
		require.Equal(t, "5", body["stdin"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stdout":"25","status":{"id":3,"description":"Accepted"}}`))
	}))
	defer srv.Close()

	result, err := newClient(srv.URL, 5*time.Second).Evaluate(context.Background(), judge.Submission{
		SourceCode:     "fixed code",
		Language:       model.LanguagePython,
		Stdin:          "5",
		ExpectedOutput: "25",
	})
	require.NoError(t, err)
	require.Equal(t, judge.StatusAccepted, result.StatusID)
	require.Equal(t, "25", result.Stdout)
}

func TestJudge0Client_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 5*time.Second).Evaluate(context.Background(), judge.Submission{
		Language: model.LanguageC,
	})
	require.ErrorIs(t, err, judge.ErrUnavailable)
}

func TestJudge0Client_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 20*time.Millisecond).Evaluate(context.Background(), judge.Submission{
		Language: model.LanguageC,
	})
	require.ErrorIs(t, err, judge.ErrUnavailable)
}

func TestJudge0Client_UnknownLanguage(t *testing.T) {
	_, err := newClient("http://localhost:0", time.Second).Evaluate(context.Background(), judge.Submission{
		Language: model.Language("cobol"),
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, judge.ErrUnavailable)
}
