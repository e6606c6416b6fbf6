package validation

import (
	"errors"
	"testing"

	"voting/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string `json:"title" validate:"required,max=5"`
	Duration int    `json:"duration" validate:"gte=1,lte=1440"`
	Choice   string `json:"vote" validate:"oneof=YES NO"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct("bad input", sample{Title: "", Duration: 0, Choice: "MAYBE"})
	require.Error(t, err)

	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, "bad input", derr.Msg)
	assert.Equal(t, []string{"This field is required."}, derr.Fields["title"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, derr.Fields["duration"])
	assert.Equal(t, []string{`"MAYBE" is not a valid choice.`}, derr.Fields["vote"])
}

func TestStructPasses(t *testing.T) {
	assert.NoError(t, Struct("bad input", sample{Title: "ok", Duration: 1440, Choice: "NO"}))
}
