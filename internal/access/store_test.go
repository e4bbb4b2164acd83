package access

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedhub/internal/apperr"
	"feedhub/internal/configsvc"
	"feedhub/internal/db/dbtest"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *configsvc.Repo) {
	t.Helper()
	gdb := dbtest.Open(t)
	settings := configsvc.NewRepo(gdb)
	return NewStore(gdb, settings), settings
}

func TestStore_CategoriesFromLegacyConfig(t *testing.T) {
	s, settings := newStore(t)
	ctx := context.Background()
	_, err := settings.MergeSetting(ctx, "system.roles.moderator", json.RawMessage(`["editor"]`), true)
	require.NoError(t, err)

	cats, err := s.Categories(ctx, []string{"editor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"moderator"}, cats)
}

func TestStore_BindWritesBothSources(t *testing.T) {
	s, settings := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Bind(ctx, "user", []string{"subscriber", "author"}))
	require.NoError(t, s.Bind(ctx, "user", []string{"author"}))

	cats, err := s.Categories(ctx, []string{"author"})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, cats)

	legacy, err := settings.GetSettingByName(ctx, "system.roles.user")
	require.NoError(t, err)
	assert.JSONEq(t, `["subscriber","author"]`, string(legacy.Value))

	m, err := s.Mapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, Mapping{"user": {"author", "subscriber"}}, m)
}

func TestStore_Unbind(t *testing.T) {
	s, settings := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bind(ctx, "moderator", []string{"editor", "author"}))

	require.NoError(t, s.Unbind(ctx, "moderator", "editor"))
	cats, err := s.Categories(ctx, []string{"editor"})
	require.NoError(t, err)
	assert.Equal(t, []string{Unknown}, cats)

	legacy, err := settings.GetSettingByName(ctx, "system.roles.moderator")
	require.NoError(t, err)
	assert.JSONEq(t, `["author"]`, string(legacy.Value))

	assert.ErrorIs(t, s.Unbind(ctx, "moderator", "editor"), apperr.ErrNotFound)
}

func TestStore_BindValidation(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	assert.ErrorIs(t, s.Bind(ctx, "user", nil), apperr.ErrData)
	assert.ErrorIs(t, s.Bind(ctx, "", []string{"x"}), apperr.ErrData)
}

func TestHTTP_UserCategory(t *testing.T) {
	s, _ := newStore(t)
	r := mux.NewRouter()
	NewHTTP(s).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/roles/bind",
		bytes.NewBufferString(`{"category": "moderator", "roles": ["editor"]}`)))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/roles/user_category",
		bytes.NewBufferString(`{"roles": ["editor"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"category": ["moderator"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/roles/user_category",
		bytes.NewBufferString(`{"role": ["editor"]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
