package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsGooseMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		content, err := fs.ReadFile(FS, name)
		require.NoError(t, err)

		assert.Contains(t, string(content), "-- +goose Up", name)
		assert.Contains(t, string(content), "-- +goose Down", name)
	}
}

func TestCreateReservations_ConfirmationCodeConstraint(t *testing.T) {
	content, err := fs.ReadFile(FS, "00001_create_reservations.sql")
	require.NoError(t, err)

	// Имя ограничения используется репозиторием для распознавания дубликатов кода
	assert.True(t, strings.Contains(string(content), "reservations_confirmation_code_key UNIQUE (confirmation_code)"))
}
