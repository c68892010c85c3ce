package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRouterHealthz(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, nil, nil, zap.NewNop())
	r := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterInvalidID(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, nil, nil, zap.NewNop())
	r := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/v1/exam-slots/abc/seats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
