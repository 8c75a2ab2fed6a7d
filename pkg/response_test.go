package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponseBytes(t *testing.T) {
	rr := httptest.NewRecorder()

	testJson := `{"key":"val"}`
	WriteResponseBytes(rr, ContentType.JSON, []byte(testJson), http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, testJson, rr.Body.String())
}

func TestWriteResponseBytesOK(t *testing.T) {
	rr := httptest.NewRecorder()

	testJson := `{"key":"val"}`
	WriteResponseBytesOK(rr, ContentType.JSON, []byte(testJson))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
	assert.Equal(t, testJson, rr.Body.String())
}

func TestWriteTextResponseOK(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteTextResponseOK(rr, "alive")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ContentType.Text, rr.Header().Get("Content-Type"))
	assert.Equal(t, "alive", rr.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, map[string]int{"steps": 1200}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"steps":1200}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteJSON(rr, make(chan int), http.StatusOK)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
