package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/experience/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/pkg/database"
)

func TestList_ScansNullEndDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewExperienceRepo(sqlx.NewDb(db, "sqlmock"))

	now := time.Now()
	start := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM experiences WHERE deleted_at IS NULL ORDER BY sort_order ASC, start_date DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "company", "location", "description", "start_date",
			"end_date", "current", "icon", "sort_order", "created_at", "updated_at", "deleted_at"}).
			AddRow("1", "Dev", "Acme", "", "", start, nil, true, "", 0, now, now, nil))

	out, err := r.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2022-05-01", out[0].StartDate.String())
	assert.Nil(t, out[0].EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PassesDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewExperienceRepo(sqlx.NewDb(db, "sqlmock"))

	start, _ := database.ParseDate("2020-01-01")
	end, _ := database.ParseDate("2021-01-01")
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO experiences`).
		WithArgs("1", "Dev", "Acme", "", "", "2020-01-01", "2021-01-01", false, "", 0).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	e := &entity.Experience{ID: "1", Title: "Dev", Company: "Acme", StartDate: start, EndDate: &end}
	require.NoError(t, r.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}
