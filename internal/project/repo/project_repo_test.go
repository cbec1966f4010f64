package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/project/entity"
)

var cols = []string{"id", "title", "description", "image_url", "image_key", "demo_url", "github_url", "tags",
	"published", "sort_order", "created_at", "updated_at", "deleted_at"}

func newRepo(t *testing.T) (*ProjectRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestList_PublicFilters(t *testing.T) {
	r, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(`FROM projects WHERE deleted_at IS NULL AND published ORDER BY sort_order ASC, created_at DESC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("1", "Site", "desc", "", "", "", "", "{go,sql}", true, 0, now, now, nil))

	out, err := r.List(context.Background(), ListOptions{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"go", "sql"}, []string(out[0].Tags))
	assert.Nil(t, out[0].DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_IncludeDeletedHasNoWhere(t *testing.T) {
	r, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(`FROM projects ORDER BY sort_order`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("1", "Old", "", "", "", "", "", "{}", false, 0, now, now, now))

	out, err := r.List(context.Background(), ListOptions{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ReturnsTimestamps(t *testing.T) {
	r, mock := newRepo(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("1", "Site", "desc", "", "", "", "", sqlmock.AnyArg(), true, 2).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &entity.Project{ID: "1", Title: "Site", Description: "desc", Tags: []string{"go"}, Published: true, Order: 2}
	require.NoError(t, r.Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MissingRow(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`UPDATE projects SET title = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := r.Update(context.Background(), &entity.Project{ID: "x", Tags: []string{}})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTogglePublished(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`UPDATE projects SET published = NOT published`).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"published"}).AddRow(true))

	got, err := r.TogglePublished(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestSetTags(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`UPDATE projects SET tags = \$2`).
		WithArgs("1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))

	require.NoError(t, r.SetTags(context.Background(), "1", []string{"go"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
