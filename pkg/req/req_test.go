package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestDecode(t *testing.T) {
	p, err := Decode[payload](strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", p.Name)

	_, err = Decode[payload](strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyBody)

	p, err = Decode[payload](strings.NewReader(`{"name":"y","other":1}`))
	require.NoError(t, err)
	assert.Equal(t, "y", p.Name)

	_, err = Decode[payload](strings.NewReader(`{"name":1}`))
	assert.Error(t, err)

	_, err = Decode[payload](strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestHandleBody_WritesBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not json"))

	out, err := HandleBody[payload](w, r, logger.NewNop())

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
