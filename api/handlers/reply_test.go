package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oneboxErrors "github.com/oneboxhq/onebox/internal/errors"
	"github.com/oneboxhq/onebox/internal/models"
)

func newReplyRouter(ai *stubAIService, smtp *stubSMTPService, emailRepo *fakeEmailRepository, defaultRecipient string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reply", NewReplyHandler(ai, smtp, emailRepo, defaultRecipient).Reply())
	return r
}

func postReply(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/reply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReplyGeneratesAndSends(t *testing.T) {
	ai := &stubAIService{reply: "Sure, let's reschedule."}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Can we reschedule?"})

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Reply sent successfully", response["message"])
	assert.Equal(t, "Sure, let's reschedule.", response["reply"])

	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, "Can we reschedule?", ai.lastPrompt)
	assert.Equal(t, 1, smtp.calls)
	assert.Equal(t, "fallback@example.com", smtp.lastRecipient)
	assert.Equal(t, "Re: Your Email", smtp.lastSubject)
	assert.Equal(t, "Sure, let's reschedule.", smtp.lastBody)
}

func TestReplyAddressesOriginalSender(t *testing.T) {
	emailRepo := &fakeEmailRepository{emails: []*models.Email{
		{ID: "email_1", FromAddress: "jane@example.com", Subject: "Lunch tomorrow"},
	}}
	ai := &stubAIService{reply: "Sounds good."}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, emailRepo, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Lunch?", "emailId": "email_1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", smtp.lastRecipient)
	assert.Equal(t, "Re: Lunch tomorrow", smtp.lastSubject)
}

func TestReplySubjectDoesNotStackReplyPrefixes(t *testing.T) {
	emailRepo := &fakeEmailRepository{emails: []*models.Email{
		{ID: "email_1", FromAddress: "jane@example.com", Subject: "Re: Lunch tomorrow"},
	}}
	ai := &stubAIService{reply: "Works for me."}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, emailRepo, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Lunch?", "emailId": "email_1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Re: Lunch tomorrow", smtp.lastSubject)
}

func TestReplyRecipientLookupCarriesRequestSpan(t *testing.T) {
	previous := opentracing.GlobalTracer()
	opentracing.SetGlobalTracer(mocktracer.New())
	defer opentracing.SetGlobalTracer(previous)

	emailRepo := &fakeEmailRepository{emails: []*models.Email{
		{ID: "email_1", FromAddress: "jane@example.com", Subject: "Lunch"},
	}}
	ai := &stubAIService{reply: "Sounds good."}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, emailRepo, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Lunch?", "emailId": "email_1"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, emailRepo.getByIDCalls)

	span := opentracing.SpanFromContext(emailRepo.getByIDCtx)
	require.NotNil(t, span, "repository lookup must run under the request span")
	mockSpan, ok := span.(*mocktracer.MockSpan)
	require.True(t, ok)
	assert.Equal(t, "ReplyHandler.Reply", mockSpan.OperationName)
}

func TestReplyRejectsMissingBody(t *testing.T) {
	ai := &stubAIService{reply: "never used"}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "fallback@example.com")

	w := postReply(t, router, gin.H{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing email body")
	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0, smtp.calls)
}

func TestReplyRejectsMalformedJSON(t *testing.T) {
	ai := &stubAIService{}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "fallback@example.com")

	req := httptest.NewRequest(http.MethodPost, "/reply", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0, smtp.calls)
}

func TestReplyGenerationFailureSkipsMailer(t *testing.T) {
	ai := &stubAIService{err: oneboxErrors.ErrEmptyCompletion}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Can we reschedule?"})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to generate reply")
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, 0, smtp.calls)
}

func TestReplySendFailureStillReturnsGeneratedText(t *testing.T) {
	ai := &stubAIService{reply: "Sure, let's reschedule."}
	smtp := &stubSMTPService{err: errors.New("connection refused")}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "fallback@example.com")

	w := postReply(t, router, gin.H{"body": "Can we reschedule?"})

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Failed to send reply", response["error"])
	assert.Equal(t, "Sure, let's reschedule.", response["reply"])
}

func TestReplyRejectsWhenNoRecipientConfigured(t *testing.T) {
	ai := &stubAIService{reply: "never used"}
	smtp := &stubSMTPService{}
	router := newReplyRouter(ai, smtp, &fakeEmailRepository{}, "")

	w := postReply(t, router, gin.H{"body": "Hello"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No recipient available")
	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0, smtp.calls)
}
