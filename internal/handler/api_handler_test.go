package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-assistant/internal/domain"
	"research-assistant/internal/llm"
	"research-assistant/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const challengeJSON = `[
  {"question": "Why is the sky blue?", "expected_answer": "Rayleigh scattering", "difficulty": "Easy", "type": "comprehension"},
  {"question": "What would change at sunset?", "expected_answer": "The sky turns red", "difficulty": "Medium", "type": "inference"},
  {"question": "How does scattering depend on wavelength?", "expected_answer": "Shorter wavelengths scatter more", "difficulty": "Hard", "type": "analysis"}
]`

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

// uploadSky loads the one-line sky document and returns the session cookie.
func uploadSky(t *testing.T, ts *testServer) *http.Cookie {
	t.Helper()
	rr := ts.do(multipartUpload(t, "/api/v1/document", "sky.txt", []byte("The sky is blue.")), nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return sessionCookie(t, rr)
}

func TestAPI_UploadAndAsk(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "The document states that the sky is blue."},
		llm.MockResponse{Text: "The sky is blue.\nJustification: The document says \"The sky is blue.\""},
	)

	rr := ts.do(multipartUpload(t, "/api/v1/document", "sky.txt", []byte("The sky is blue.")), nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cookie := sessionCookie(t, rr)

	var doc documentResponse
	decodeBody(t, rr, &doc)
	require.NotNil(t, doc.Document)
	assert.Equal(t, "sky.txt", doc.Document.Name)
	assert.NotEmpty(t, doc.Document.Summary)
	assert.LessOrEqual(t, len(strings.Fields(doc.Document.Summary)), 150)

	rr = ts.do(jsonRequest(http.MethodPost, "/api/v1/ask", `{"question":"What color is the sky?"}`), cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rec domain.QARecord
	decodeBody(t, rr, &rec)
	assert.Contains(t, strings.ToLower(rec.Answer), "blue")
	assert.NotEmpty(t, rec.Justification)

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/history", nil), cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var history struct {
		Conversation []domain.QARecord `json:"conversation"`
	}
	decodeBody(t, rr, &history)
	require.Len(t, history.Conversation, 1)
	assert.Equal(t, "What color is the sky?", history.Conversation[0].Question)
}

func TestAPI_UploadUnsupportedFormat(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(multipartUpload(t, "/api/v1/document", "notes.docx", []byte("hello")), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), service.MsgUnsupportedFormat)
	assert.Equal(t, 0, ts.provider.CallCount())
}

func TestAPI_UploadTooLarge(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(multipartUpload(t, "/api/v1/document", "big.txt", []byte(strings.Repeat("a", 8192))), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), "Maximum size allowed is 4KB.")
	assert.Equal(t, 0, ts.provider.CallCount())
}

func TestAPI_UploadBodyOverLimit(t *testing.T) {
	ts := newTestServer(t)

	// Larger than the file limit plus multipart allowance.
	rr := ts.do(multipartUpload(t, "/api/v1/document", "huge.txt", []byte(strings.Repeat("a", 2<<20))), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, 0, ts.provider.CallCount())
}

func TestAPI_UploadMissingFile(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(multipartUpload(t, "/api/v1/document", "", nil), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_SummaryFailureKeepsDocument(t *testing.T) {
	ts := newTestServer(t, llm.MockResponse{Err: &llm.ErrRateLimit{}})

	rr := ts.do(multipartUpload(t, "/api/v1/document", "sky.txt", []byte("The sky is blue.")), nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var doc documentResponse
	decodeBody(t, rr, &doc)
	assert.Empty(t, doc.Document.Summary)
	assert.NotEmpty(t, doc.Document.SummaryError)

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/document", nil), sessionCookie(t, rr))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPI_AskWithoutDocument(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(jsonRequest(http.MethodPost, "/api/v1/ask", `{"question":"Anything?"}`), nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please upload and process a document first.")
}

func TestAPI_AskEmptyQuestion(t *testing.T) {
	ts := newTestServer(t, llm.MockResponse{Text: "Summary."})
	cookie := uploadSky(t, ts)

	rr := ts.do(jsonRequest(http.MethodPost, "/api/v1/ask", `{"question":"   "}`), cookie)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 1, ts.provider.CallCount())
}

func TestAPI_AskUpstreamFailure(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "Summary."},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	cookie := uploadSky(t, ts)

	rr := ts.do(jsonRequest(http.MethodPost, "/api/v1/ask", `{"question":"What color is the sky?"}`), cookie)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error"`)
}

func TestAPI_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(jsonRequest(http.MethodPost, "/api/v1/ask", `{`), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_GetDocumentNone(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/document", nil), nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_ClearDocument(t *testing.T) {
	ts := newTestServer(t, llm.MockResponse{Text: "Summary."})
	cookie := uploadSky(t, ts)

	rr := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/document", nil), cookie)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/document", nil), cookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_ChallengeFlow(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "Summary."},
		llm.MockResponse{Text: challengeJSON},
		llm.MockResponse{Text: "Evaluation: Correct\nFeedback: Well explained.\nScore: 9"},
	)
	cookie := uploadSky(t, ts)

	rr := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge", nil), cookie)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var view challengeView
	decodeBody(t, rr, &view)
	require.Len(t, view.Questions, 3)
	require.NotNil(t, view.Current)
	assert.Equal(t, 1, view.Current.Number)
	assert.True(t, view.CanSkip)
	assert.NotContains(t, rr.Body.String(), "Rayleigh scattering", "expected answers stay hidden")

	rr = ts.do(jsonRequest(http.MethodPost, "/api/v1/challenge/answer", `{"answer":"Light scattering"}`), cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var attempt domain.ChallengeAttempt
	decodeBody(t, rr, &attempt)
	assert.Equal(t, 9, attempt.Score)
	assert.Equal(t, "Correct", attempt.Evaluation)
	assert.Equal(t, "Well explained.", attempt.Feedback)

	rr = ts.do(jsonRequest(http.MethodPost, "/api/v1/challenge/answer", `{"answer":"Again"}`), cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "a question is scored once")

	rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/next", nil), cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &view)
	require.NotNil(t, view.Current)
	assert.Equal(t, 2, view.Current.Number)
	assert.Len(t, view.Attempts, 1)
}

func TestAPI_SkipLastQuestion(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "Summary."},
		llm.MockResponse{Text: challengeJSON},
	)
	cookie := uploadSky(t, ts)

	rr := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge", nil), cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	for i := 0; i < 2; i++ {
		rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/skip", nil), cookie)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/skip", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_SetMode(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "Summary."},
		llm.MockResponse{Text: challengeJSON},
	)
	cookie := uploadSky(t, ts)

	rr := ts.do(jsonRequest(http.MethodPost, "/api/v1/mode", `{"mode":"challenge"}`), cookie)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/challenge", nil), cookie)
	var view challengeView
	decodeBody(t, rr, &view)
	assert.True(t, view.Active)
	assert.Equal(t, domain.ChallengeQuestionCount, view.Total)

	rr = ts.do(jsonRequest(http.MethodPost, "/api/v1/mode", `{"mode":"quiz"}`), cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_NextRequiresAnswer(t *testing.T) {
	ts := newTestServer(t,
		llm.MockResponse{Text: "Summary."},
		llm.MockResponse{Text: challengeJSON},
	)
	cookie := uploadSky(t, ts)

	rr := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge", nil), cookie)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/next", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "first question cannot be passed unanswered")

	for i := 0; i < 2; i++ {
		rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/skip", nil), cookie)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/challenge/next", nil), cookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "last question cannot be passed unanswered")

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/challenge", nil), cookie)
	var view challengeView
	decodeBody(t, rr, &view)
	assert.False(t, view.Complete)
	assert.Empty(t, view.Attempts)
}
