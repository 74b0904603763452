package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/config"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/infrastructure/database/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestMigrationURL_EscapesCredentials(t *testing.T) {
	got := MigrationURL(config.DBConfig{
		Host: "db", Port: "5432", User: "app", Password: "p@ss/word", Name: "verihealth", SSLMode: "require",
	})
	assert.Equal(t, "pgx5://app:p%40ss%2Fword@db:5432/verihealth?sslmode=require", got)
}

func TestMigrations_ArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestMigrations_ClaimInvariantsInSchema(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "000001_init_schema.up.sql")
	require.NoError(t, err)
	schema := string(raw)

	assert.Contains(t, schema, "ON institutions (is_default) WHERE is_default")
	assert.Contains(t, schema, "CHECK (role NOT IN ('clinician', 'institution_admin') OR institution_id IS NOT NULL)")
	assert.Contains(t, schema, "CREATE UNIQUE INDEX idx_users_email")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("development"))
	assert.Equal(t, logger.Silent, gormLogLevel("test"))
	assert.Equal(t, logger.Error, gormLogLevel("production"))
}
