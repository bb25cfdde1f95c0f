package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKRoundTripsData(t *testing.T) {
	data := map[string]string{"plan": "gold"}
	env := OK("fetched", data)

	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "fetched", env.Message)
	assert.Equal(t, data, env.Data)
	assert.NotEmpty(t, env.Timestamp)
	assert.Nil(t, env.Errors)
}

func TestErrorHasNoData(t *testing.T) {
	env := Error(http.StatusNotFound, "voucher not found")

	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
}

func TestDeletedHasNoBody(t *testing.T) {
	env := Deleted("voucher removed")

	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Meta)
}

func TestPaginatedMeta(t *testing.T) {
	env := Paginated("page", []int{1, 2, 3}, 45, 2, 10)

	require.NotNil(t, env.Meta)
	assert.Equal(t, 45, env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 10, env.Meta.Limit)
	assert.Equal(t, 5, env.Meta.TotalPages)
}

func TestPaginatedZeroLimit(t *testing.T) {
	env := Paginated("page", nil, 10, 1, 0)

	require.NotNil(t, env.Meta)
	assert.Equal(t, 0, env.Meta.TotalPages)
}

func TestValidationErrorFieldMessages(t *testing.T) {
	type req struct {
		Email  string  `validate:"required,email"`
		Amount float64 `validate:"gt=0"`
	}

	err := validator.New().Struct(req{Email: "nope", Amount: -1})
	require.Error(t, err)

	env := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "must be a valid email address", env.Errors["Email"])
	assert.Equal(t, "must be greater than 0", env.Errors["Amount"])
}

func TestWriteSetsStatusAndContentType(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, Created("made", map[string]int{"id": 7}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)
}
