package uitest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dimos/internal/ui"
)

func TestRecorderQueues(t *testing.T) {
	r := New().Confirms(true, false).Selects("b").Inputs("Go")

	yes, err := r.Confirm("one?", false)
	require.NoError(t, err)
	assert.True(t, yes)
	no, err := r.Confirm("two?", true)
	require.NoError(t, err)
	assert.False(t, no)

	v, err := r.Select("pick", []ui.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	s, err := r.Input("lang", ui.InputOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Go", s)

	assert.Equal(t, []string{"one?", "two?"}, r.PromptsOf("confirm"))
}

func TestRecorderUnscripted(t *testing.T) {
	r := New()
	_, err := r.Confirm("anything?", true)
	assert.ErrorIs(t, err, ErrUnscripted)

	r.UseDefaults = true
	got, err := r.Confirm("anything?", true)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRecorderSelectRejectsUnknownValue(t *testing.T) {
	r := New().Selects("zzz")
	_, err := r.Select("pick", []ui.Option{{Label: "A", Value: "a"}})
	assert.Error(t, err)
}

func TestRecorderInputValidates(t *testing.T) {
	r := New().Inputs("")
	_, err := r.Input("lang", ui.InputOptions{Validate: func(s string) error {
		if s == "" {
			return errors.New("required")
		}
		return nil
	}})
	assert.EqualError(t, err, "required")
}

func TestRecorderLines(t *testing.T) {
	r := New()
	r.Log(ui.LevelSuccess, "git found")
	r.Log(ui.LevelSuccess, "git found")
	r.Log(ui.LevelWarn, "uv not found")

	assert.Equal(t, 2, r.Count("git found"))
	assert.True(t, r.Contains("uv not"))
	assert.Equal(t, []string{"uv not found"}, r.Texts(ui.LevelWarn))
}
