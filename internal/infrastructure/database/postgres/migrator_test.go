package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	names, err := EmbeddedMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups[strings.TrimSuffix(n, ".up.sql")] = true
		case strings.HasSuffix(n, ".down.sql"):
			downs[strings.TrimSuffix(n, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %q", n)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestEmbeddedMigrations_CreateTables(t *testing.T) {
	var all strings.Builder
	names, err := EmbeddedMigrations()
	require.NoError(t, err)
	for _, n := range names {
		if !strings.HasSuffix(n, ".up.sql") {
			continue
		}
		b, err := migrationFS.ReadFile("migrations/" + n)
		require.NoError(t, err)
		all.Write(b)
	}
	for _, table := range []string{"tenants", "users", "documents", "fraud_assessments"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, all.String(), "users_email_key")
}

func TestMigrator_DownRejectsNonPositiveSteps(t *testing.T) {
	m := NewMigrator(config.DatabaseConfig{Host: "localhost", Port: 5432, DBName: "x", User: "u"}, logging.NewNopLogger())
	err := m.Down(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be greater than 0")
}
