package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Sorted(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_attempts.sql", names[0])
	assert.IsNonDecreasing(t, names)
}

func TestMigrations_Embedded(t *testing.T) {
	b, err := files.ReadFile("0001_attempts.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS booking_attempts")
}
