package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ugur-Atakan/mckaycpa/internal/domain"
	"github.com/Ugur-Atakan/mckaycpa/internal/wizard"
	apperrors "github.com/Ugur-Atakan/mckaycpa/pkg/errors"
)

func setupTestRedis(t *testing.T) (*DraftRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewDraftRepository(client, 72*time.Hour)
	return repo, mr
}

func sampleDraft() *wizard.Draft {
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := wizard.NewDraft("draft-001", now)
	d.Step = wizard.StepShares
	d.CompanyName = "Acme Inc"
	d.Shares = domain.Shares{AuthorizedCommon: "1000", IssuedCommon: "500"}
	return d
}

func TestDraftRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	draft := sampleDraft()
	data, err := json.Marshal(draft)
	require.NoError(t, err)
	require.NoError(t, mr.Set("draft:"+draft.ID, string(data)))

	got, err := repo.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, wizard.StepShares, got.Step)
	assert.Equal(t, "Acme Inc", got.CompanyName)
	assert.Equal(t, "1000", got.Shares.AuthorizedCommon)
	assert.Equal(t, domain.DefaultCountry, got.Address.Country)
}

func TestDraftRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDraftRepository_Get_CorruptData(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("draft:bad", "{not json"))

	_, err := repo.Get(context.Background(), "bad")
	assert.Error(t, err)
}

func TestDraftRepository_SaveRoundTrip(t *testing.T) {
	repo, mr := setupTestRedis(t)

	draft := sampleDraft()
	require.NoError(t, repo.Save(context.Background(), draft))

	got, err := repo.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.CompanyName, got.CompanyName)

	// TTL is applied on save.
	ttl := mr.TTL("draft:" + draft.ID)
	assert.Equal(t, 72*time.Hour, ttl)
}

func TestDraftRepository_SaveRefreshesTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	draft := sampleDraft()

	require.NoError(t, repo.Save(context.Background(), draft))
	mr.FastForward(24 * time.Hour)
	require.NoError(t, repo.Save(context.Background(), draft))

	assert.Equal(t, 72*time.Hour, mr.TTL("draft:"+draft.ID))
}

func TestDraftRepository_ExpiredDraftGone(t *testing.T) {
	repo, mr := setupTestRedis(t)
	draft := sampleDraft()

	require.NoError(t, repo.Save(context.Background(), draft))
	mr.FastForward(73 * time.Hour)

	_, err := repo.Get(context.Background(), draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDraftRepository_Delete(t *testing.T) {
	repo, _ := setupTestRedis(t)
	draft := sampleDraft()

	require.NoError(t, repo.Save(context.Background(), draft))
	require.NoError(t, repo.Delete(context.Background(), draft.ID))

	_, err := repo.Get(context.Background(), draft.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDraftRepository_Delete_MissingIsNoError(t *testing.T) {
	repo, _ := setupTestRedis(t)
	assert.NoError(t, repo.Delete(context.Background(), "missing"))
}
