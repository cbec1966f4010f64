package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
)

type fakeStore struct {
	inserted  []entity.Entry
	lastLimit int
	lastName  string
}

func (f *fakeStore) Insert(_ context.Context, e *entity.Entry) error {
	f.inserted = append(f.inserted, *e)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, name string, limit int) ([]entity.Entry, error) {
	f.lastName, f.lastLimit = name, limit
	return f.inserted, nil
}

func TestRecord_StampsIDAndTime(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st)

	require.NoError(t, svc.Record(context.Background(), entity.Entry{Action: entity.ActionCreate, Entity: "Project", EntityID: "1"}))
	require.Len(t, st.inserted, 1)
	assert.NotEmpty(t, st.inserted[0].ID)
	assert.False(t, st.inserted[0].CreatedAt.IsZero())
}

func TestRecent_ClampsLimit(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(st)

	_, _ = svc.Recent(context.Background(), "", 0)
	assert.Equal(t, defaultLimit, st.lastLimit)
	_, _ = svc.Recent(context.Background(), "Skill", 10000)
	assert.Equal(t, maxLimit, st.lastLimit)
	assert.Equal(t, "Skill", st.lastName)
}

func TestHandler_List(t *testing.T) {
	st := &fakeStore{inserted: []entity.Entry{{ID: "a", Action: entity.ActionDelete, Entity: "Project"}}}
	h := NewHandler(NewService(st), zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/admin/audit?limit=5&entity=Project", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"DELETE"`)
	assert.Equal(t, 5, st.lastLimit)
}
