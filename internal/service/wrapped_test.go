package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"royale-wrapped/internal/api"
	"royale-wrapped/internal/config"
	"royale-wrapped/internal/domain"
	"royale-wrapped/internal/insights"
	"royale-wrapped/internal/repository"
	"royale-wrapped/internal/service"
)

type fakeClient struct {
	player    *api.PlayerResponse
	battleLog []byte
	err       error
	calls     int
}

func (f *fakeClient) GetPlayer(_ context.Context, tag string) (*api.PlayerResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.player, nil
}

func (f *fakeClient) GetBattleLog(_ context.Context, tag string) ([]byte, error) {
	return f.battleLog, nil
}

var _ service.RoyaleClient = (*fakeClient)(nil)

type fakeStore struct {
	snap    *domain.Snapshot
	upserts int
}

func (f *fakeStore) Get(_ context.Context, tag string) (*domain.Snapshot, error) {
	if f.snap == nil {
		return nil, repository.ErrNotFound
	}
	return f.snap, nil
}

func (f *fakeStore) Upsert(_ context.Context, snap *domain.Snapshot) error {
	f.snap = snap
	f.upserts++
	return nil
}

func (f *fakeStore) IsStale(_ context.Context, tag string, ttl time.Duration) (bool, error) {
	if f.snap == nil {
		return true, nil
	}
	return time.Since(f.snap.FetchedAt) > ttl, nil
}

var _ service.SnapshotStore = (*fakeStore)(nil)

func testPlayer() *api.PlayerResponse {
	p := &api.PlayerResponse{
		Tag:          "#89G0UCYV",
		Name:         "Player",
		Trophies:     5400,
		BestTrophies: 6000,
	}
	p.Arena.Name = "Legendary Arena"
	return p
}

func newService(client *fakeClient, store *fakeStore) *service.WrappedService {
	cfg := &config.Config{SnapshotTTL: 5 * time.Minute}
	return service.NewWrappedService(client, store, cfg, zerolog.New(io.Discard))
}

func TestPlayerWrapped_InvalidTag(t *testing.T) {
	svc := newService(&fakeClient{}, &fakeStore{})
	_, err := svc.PlayerWrapped(context.Background(), "not a tag!", false)
	assert.ErrorIs(t, err, service.ErrInvalidTag)
}

func TestPlayerWrapped_FetchesAndCaches(t *testing.T) {
	client := &fakeClient{player: testPlayer(), battleLog: []byte("[]")}
	store := &fakeStore{}
	svc := newService(client, store)

	result, err := svc.PlayerWrapped(context.Background(), "89g0ucyv", false)
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, "#89G0UCYV", store.snap.Tag)

	assert.NotEmpty(t, result.ReportID)
	assert.Equal(t, "Player", result.Player.Name)
	assert.Equal(t, "Legendary Arena", result.Player.Arena)
	require.NotNil(t, result.Insights)
	assert.Equal(t, "#89G0UCYV", result.Insights.PlayerTag)
	assert.Equal(t, 5400, result.Insights.TrophyRollerCoaster.Current)
}

func TestPlayerWrapped_UsesFreshSnapshot(t *testing.T) {
	playerJSON, err := json.Marshal(testPlayer())
	require.NoError(t, err)

	client := &fakeClient{err: errors.New("api must not be called")}
	store := &fakeStore{snap: &domain.Snapshot{
		Tag:           "#89G0UCYV",
		PlayerJSON:    playerJSON,
		BattleLogJSON: []byte("[]"),
		FetchedAt:     time.Now(),
	}}
	svc := newService(client, store)

	result, err := svc.PlayerWrapped(context.Background(), "#89G0UCYV", false)
	require.NoError(t, err)
	assert.Zero(t, client.calls)
	assert.Equal(t, "Player", result.Player.Name)
}

func TestPlayerWrapped_RefreshBypassesSnapshot(t *testing.T) {
	playerJSON, err := json.Marshal(testPlayer())
	require.NoError(t, err)

	client := &fakeClient{player: testPlayer(), battleLog: []byte("[]")}
	store := &fakeStore{snap: &domain.Snapshot{
		Tag:           "#89G0UCYV",
		PlayerJSON:    playerJSON,
		BattleLogJSON: []byte("[]"),
		FetchedAt:     time.Now(),
	}}
	svc := newService(client, store)

	_, err = svc.PlayerWrapped(context.Background(), "#89G0UCYV", true)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestPlayerWrapped_UpstreamErrorPropagates(t *testing.T) {
	client := &fakeClient{err: api.ErrPlayerNotFound}
	svc := newService(client, &fakeStore{})

	_, err := svc.PlayerWrapped(context.Background(), "#89G0UCYV", false)
	assert.ErrorIs(t, err, api.ErrPlayerNotFound)
}

func TestPlayerWrapped_MalformedBattleLog(t *testing.T) {
	client := &fakeClient{player: testPlayer(), battleLog: []byte(`{"oops": true}`)}
	svc := newService(client, &fakeStore{})

	_, err := svc.PlayerWrapped(context.Background(), "#89G0UCYV", false)
	assert.ErrorIs(t, err, insights.ErrMalformedBattleLog)
}
