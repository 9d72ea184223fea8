package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `-- header comment
CREATE TABLE t (
    id NUMBER
);

CREATE INDEX idx_t ON t (id);
`
	got := SplitStatements(script)

	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE t (\n    id NUMBER\n)", got[0])
	assert.Equal(t, "CREATE INDEX idx_t ON t (id)", got[1])
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations()

	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "000001_create_documents", migrations[0].Version)
	assert.Equal(t, "000002_create_media_artifacts", migrations[1].Version)
	assert.Len(t, migrations[0].Statements, 2)
}

func TestLoadMigrations_SkipsDownFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.up.sql":   {Data: []byte("CREATE TABLE b (x NUMBER);")},
		"m/001_a.up.sql":   {Data: []byte("CREATE TABLE a (x NUMBER);")},
		"m/001_a.down.sql": {Data: []byte("DROP TABLE a;")},
	}

	migrations, err := loadMigrations(fsys, "m")

	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_a", migrations[0].Version)
	assert.Equal(t, []string{"CREATE TABLE a (x NUMBER)"}, migrations[0].Statements)
}

func TestApplyMigrations(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: "001_a", Statements: []string{"CREATE TABLE a (x NUMBER)"}},
		{Version: "002_b", Statements: []string{"CREATE TABLE b (x NUMBER)", "CREATE INDEX ib ON b (x)"}},
	}

	mock.ExpectExec("CREATE TABLE schema_migrations").WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations WHERE version = :1")).
		WithArgs("001_a").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations WHERE version = :1")).
		WithArgs("002_b").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (x NUMBER)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX ib ON b (x)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_b", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, applyMigrations(context.Background(), db, migrations))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrations_StatementFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").WithArgs("001_a").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE a").WillReturnError(errors.New("ORA-00904: invalid identifier"))

	err = applyMigrations(context.Background(), db, []Migration{{Version: "001_a", Statements: []string{"CREATE TABLE a (x NUMBER)"}}})

	assert.ErrorContains(t, err, "001_a")
	assert.NoError(t, mock.ExpectationsWereMet())
}
