package section

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/cache"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
)

type memStore struct {
	rows  map[string]*entity.Section
	lists int
}

func (m *memStore) List(context.Context) ([]entity.Section, error) {
	m.lists++
	out := []entity.Section{}
	for _, s := range m.rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memStore) Get(_ context.Context, key string) (*entity.Section, error) {
	s, ok := m.rows[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, s *entity.Section) error {
	if _, ok := m.rows[s.Section]; !ok {
		return sql.ErrNoRows
	}
	cp := *s
	m.rows[s.Section] = &cp
	return nil
}

func (m *memStore) Toggle(_ context.Context, key string) (bool, error) {
	s, ok := m.rows[key]
	if !ok {
		return false, sql.ErrNoRows
	}
	s.Visible = !s.Visible
	return s.Visible, nil
}

func (m *memStore) Reorder(_ context.Context, keys []string) error {
	for _, k := range keys {
		if _, ok := m.rows[k]; !ok {
			return sql.ErrNoRows
		}
	}
	for i, k := range keys {
		m.rows[k].Order = i
	}
	return nil
}

func (m *memStore) InsertMissing(_ context.Context, defaults []entity.Section) (int, error) {
	added := 0
	for _, d := range defaults {
		if _, ok := m.rows[d.Section]; ok {
			continue
		}
		cp := d
		m.rows[d.Section] = &cp
		added++
	}
	return added, nil
}

type auditor struct{ entries []auditentity.Entry }

func (a *auditor) Record(_ context.Context, e auditentity.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func newService(t *testing.T) (*Service, *memStore, *auditor) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	c := cache.New(cache.Config{TTL: time.Minute}, logger)
	st := &memStore{rows: map[string]*entity.Section{}}
	a := &auditor{}
	svc := NewService(st, mutation.NewKit(a, c, logger), c)
	_, err := svc.Seed(context.Background(), DefaultSections())
	require.NoError(t, err)
	return svc, st, a
}

func adminCtx() context.Context {
	return session.WithClaims(context.Background(), &session.Claims{UserID: "u1"})
}

func TestDefaultSections(t *testing.T) {
	defs := DefaultSections()
	require.Len(t, defs, 6)
	assert.Equal(t, entity.About, defs[0].Section)
	assert.Equal(t, entity.Contact, defs[5].Section)
	for _, d := range defs {
		assert.True(t, d.Visible)
	}
}

func TestParseSeed_Rejects(t *testing.T) {
	_, err := ParseSeed([]byte("sections:\n  - section: About Me\n"))
	assert.Error(t, err)
	_, err = ParseSeed([]byte("sections:\n  - section: about\n  - section: about\n"))
	assert.Error(t, err)
	_, err = ParseSeed([]byte("sections: [unterminated"))
	assert.Error(t, err)
}

func TestSeed_IsIdempotent(t *testing.T) {
	svc, st, a := newService(t)
	st.rows[entity.About].Label = "Who am I"

	added, err := svc.Seed(context.Background(), DefaultSections())
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, "Who am I", st.rows[entity.About].Label)
	assert.Empty(t, a.entries)
}

func TestVisible_CachedAndInvalidatedByToggle(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := adminCtx()

	keys, err := svc.Visible(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 6)
	_, err = svc.Visible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.lists)

	visible, err := svc.Toggle(ctx, entity.Skills)
	require.NoError(t, err)
	assert.False(t, visible)

	keys, err = svc.Visible(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, entity.Skills)
	assert.Equal(t, 2, st.lists)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, a := newService(t)
	label := "Work"
	got, err := svc.Update(adminCtx(), entity.Experience, entity.Input{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Label)
	assert.True(t, got.Visible)
	assert.Equal(t, 2, got.Order)
	require.Len(t, a.entries, 1)
	assert.Equal(t, entity.Experience, a.entries[0].EntityID)

	_, err = svc.Update(adminCtx(), "blog", entity.Input{Label: &label})
	assert.ErrorIs(t, err, mutation.ErrNotFound)
}

func TestReorder(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := adminCtx()
	order := []string{"contact", "skills", "certificates", "experience", "projects", "about"}
	require.NoError(t, svc.Reorder(ctx, entity.ReorderInput{Sections: order}))

	keys, err := svc.Visible(ctx)
	require.NoError(t, err)
	assert.Equal(t, order, keys)

	err = svc.Reorder(ctx, entity.ReorderInput{Sections: []string{"about", "about"}})
	var ve *mutation.ValidationError
	assert.ErrorAs(t, err, &ve)

	assert.ErrorIs(t, svc.Reorder(ctx, entity.ReorderInput{Sections: []string{"blog"}}), mutation.ErrNotFound)
	assert.ErrorIs(t, svc.Reorder(context.Background(), entity.ReorderInput{Sections: order}), mutation.ErrUnauthorized)
}
