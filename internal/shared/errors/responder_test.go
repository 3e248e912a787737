package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errInvalid  = errors.New("invalid input")
	errBadPrice = errors.New("price must not be negative")
	errTaken    = errors.New("email already registered")
)

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/things/7", nil)
	fn(c)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponder_FirstMatchingMapperWins(t *testing.T) {
	problems := NewChainedResponder("")
	problems.AddMapper(SentinelMapper(errTaken, ErrConflict))
	problems.AddMapper(ValidationMapper(errInvalid, map[error]string{errBadPrice: "price"}))

	rec, problem := respond(t, func(c *gin.Context) {
		problems.RespondError(c, fmt.Errorf("%w: %w", errInvalid, errBadPrice))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, "/api/things/7", problem.Instance)
	assert.Equal(t, map[string]any{"price": errBadPrice.Error()}, problem.Extensions["fields"])

	rec, problem = respond(t, func(c *gin.Context) {
		problems.RespondError(c, errTaken)
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errTaken.Error(), problem.Detail)
}

func TestChainedResponder_UnmappedErrorIsOpaque(t *testing.T) {
	problems := NewChainedResponder("", SentinelMapper(errTaken, ErrConflict))

	rec, problem := respond(t, func(c *gin.Context) {
		problems.RespondError(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", problem.Detail)

	rec, problem = respond(t, func(c *gin.Context) {
		problems.RespondError(c, fmt.Errorf("wrapped: %w", ErrNotFound.WithDetail("gone")))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gone", problem.Detail)
}

func TestResponder_BaseURIAndHelpers(t *testing.T) {
	problems := NewChainedResponder("https://shop.example")

	rec, problem := respond(t, func(c *gin.Context) {
		problems.NotFound(c, "thing", "7")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "https://shop.example"+TypeNotFound, problem.Type)
	assert.Equal(t, "thing", problem.Extensions["resourceType"])
	assert.Equal(t, "7", problem.Extensions["identifier"])

	rec, problem = respond(t, func(c *gin.Context) {
		problems.BadRequest(c, "unexpected EOF")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "https://shop.example"+TypeBadRequest, problem.Type)
	assert.Equal(t, "unexpected EOF", problem.Detail)
}
