package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	Name  string    `json:"name" validate:"notblank"`
	Email string    `json:"email" validate:"omitempty,email"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

func TestValidateStruct(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := window{Name: "spring", Start: now, End: now.Add(time.Hour)}
	assert.NoError(t, ValidateStruct(valid))

	cases := map[string]struct {
		mutate func(*window)
		field  string
	}{
		"blank name":         {func(w *window) { w.Name = "  " }, "name"},
		"display-name email": {func(w *window) { w.Email = "Bob <bob@example.com>" }, "email"},
		"end before start":   {func(w *window) { w.End = now.Add(-time.Hour) }, "end"},
		"missing start":      {func(w *window) { w.Start = time.Time{} }, "start"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := valid
			tc.mutate(&w)
			err := ValidateStruct(w)
			require.Error(t, err)
			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Message, tc.field)
		})
	}
}
