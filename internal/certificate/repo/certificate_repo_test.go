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

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

var cols = []string{"id", "title", "issuer", "description", "image_url", "image_key", "credential_url",
	"issue_date", "tags", "sort_order", "created_at", "updated_at", "deleted_at"}

func newRepo(t *testing.T) (*CertificateRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCertificateRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestList_ExcludesDeleted(t *testing.T) {
	r, mock := newRepo(t)
	now := time.Now()
	issued := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM certificates WHERE deleted_at IS NULL ORDER BY sort_order ASC, issue_date DESC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("1", "CKA", "CNCF", "", "", "", "https://cred.example.com/1", issued, "{k8s}", 0, now, now, nil))

	out, err := r.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-05-02", out[0].IssueDate.String())
	assert.Equal(t, []string{"k8s"}, []string(out[0].Tags))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	r, mock := newRepo(t)
	now := time.Now()
	issued, err := database.ParseDate("2024-05-02")
	require.NoError(t, err)
	mock.ExpectQuery(`INSERT INTO certificates`).
		WithArgs("1", "CKA", "CNCF", "", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), 3).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	c := &entity.Certificate{ID: "1", Title: "CKA", Issuer: "CNCF", IssueDate: issued, Tags: []string{"k8s"}, Order: 3}
	require.NoError(t, r.Create(context.Background(), c))
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTags_DeletedRowIsNotFound(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`UPDATE certificates SET tags = \$2 .* deleted_at IS NULL RETURNING id`).
		WithArgs("9", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := r.SetTags(context.Background(), "9", []string{"a"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
