package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
)

type fakeMigrator struct {
	upErr   error
	steps   []int
	target  uint
	version uint
	dirty   bool
	verErr  error
	closed  bool
}

func (f *fakeMigrator) Up() error { return f.upErr }
func (f *fakeMigrator) Steps(n int) error { f.steps = append(f.steps, n); return nil }
func (f *fakeMigrator) Migrate(version uint) error { f.target = version; return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.verErr }
func (f *fakeMigrator) Close() (error, error) { f.closed = true; return nil, nil }

func useMigrator(t *testing.T, m *fakeMigrator) {
	t.Helper()
	previous := openMigrator
	openMigrator = func(*RootOptions) (Migrator, error) { return m, nil }
	t.Cleanup(func() { openMigrator = previous })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "goto"},
		{"migrate", "status"},
		{"seed"},
		{"queue", "stats"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	flag := cmd.PersistentFlags().Lookup("migrations")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestMigrateUp(t *testing.T) {
	m := &fakeMigrator{}
	useMigrator(t, m)

	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied")
	assert.True(t, m.closed)

	m.upErr = migrate.ErrNoChange
	out, err = execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	m.upErr = errors.New("boom")
	_, err = execute(t, "migrate", "up")
	assert.ErrorContains(t, err, "boom")
}

func TestMigrateDownAndGoto(t *testing.T) {
	m := &fakeMigrator{}
	useMigrator(t, m)

	_, err := execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, []int{-1}, m.steps)

	out, err := execute(t, "migrate", "goto", "3")
	require.NoError(t, err)
	assert.Equal(t, uint(3), m.target)
	assert.Contains(t, out, "Migrated to version 3")

	_, err = execute(t, "migrate", "goto", "three")
	assert.Error(t, err)
}

func TestMigrateStatus(t *testing.T) {
	m := &fakeMigrator{version: 4, dirty: true}
	useMigrator(t, m)

	out, err := execute(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 4 (dirty)")

	m.verErr = migrate.ErrNilVersion
	out, err = execute(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No migrations applied yet")
}

func TestSeed(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	previous := openCatalog
	openCatalog = func() (repository.CatalogRepository, error) { return repository.NewCatalogRepository(db), nil }
	t.Cleanup(func() { openCatalog = previous })
	previousForget := forgetCatalogCache
	forgetCatalogCache = func() (int, error) { return 3, nil }
	t.Cleanup(func() { forgetCatalogCache = previousForget })

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Camisolas
    products:
      - name: Camisola Básica
        variants:
          - name: Azul
            price: "19,90"
`), 0o644))

	out, err := execute(t, "seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 categories, 1 products, 1 variants")
	assert.Contains(t, out, "Cleared 3 cached catalog pages")

	_, err = repository.NewCatalogRepository(db).GetVariantBySlug("camisola-basica-azul")
	assert.NoError(t, err)
}
