package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"royale-wrapped/internal/api"
	"royale-wrapped/internal/config"
	"royale-wrapped/internal/constants"
	"royale-wrapped/internal/domain"
	"royale-wrapped/internal/insights"
	"royale-wrapped/internal/repository"
)

var ErrInvalidTag = errors.New("invalid player tag")

// RoyaleClient is the upstream API surface the service needs.
type RoyaleClient interface {
	GetPlayer(ctx context.Context, tag string) (*api.PlayerResponse, error)
	GetBattleLog(ctx context.Context, tag string) ([]byte, error)
}

// SnapshotStore caches raw upstream payloads per tag.
type SnapshotStore interface {
	Get(ctx context.Context, tag string) (*domain.Snapshot, error)
	Upsert(ctx context.Context, snap *domain.Snapshot) error
	IsStale(ctx context.Context, tag string, ttl time.Duration) (bool, error)
}

// PlayerSummary is the profile part of the response, echoed alongside
// the insights.
type PlayerSummary struct {
	Tag            string `json:"tag"`
	Name           string `json:"name"`
	ExpLevel       int    `json:"exp_level"`
	Trophies       int    `json:"trophies"`
	BestTrophies   int    `json:"best_trophies"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	BattleCount    int    `json:"battle_count"`
	ThreeCrownWins int    `json:"three_crown_wins"`
	Arena          string `json:"arena"`
	ClanName       string `json:"clan_name,omitempty"`
}

type WrappedResult struct {
	ReportID string           `json:"report_id"`
	Player   PlayerSummary    `json:"player"`
	Insights *insights.Report `json:"insights"`
}

type WrappedService struct {
	client RoyaleClient
	store  SnapshotStore
	ttl    time.Duration
	logger zerolog.Logger
}

func NewWrappedService(client RoyaleClient, store SnapshotStore, cfg *config.Config, logger zerolog.Logger) *WrappedService {
	return &WrappedService{
		client: client,
		store:  store,
		ttl:    cfg.SnapshotTTL,
		logger: logger,
	}
}

// PlayerWrapped fetches (or reuses) the player's profile and battle
// log and runs the insights engine over them. refresh forces a fetch
// even when a fresh snapshot exists.
func (s *WrappedService) PlayerWrapped(ctx context.Context, tag string, refresh bool) (*WrappedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !api.ValidateTag(tag) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	tag = api.NormalizeTag(tag)

	s.logger.Info().Str("tag", tag).Bool("refresh", refresh).Msg("building wrapped report")

	snap, err := s.freshSnapshot(ctx, tag, refresh)
	if err != nil {
		return nil, err
	}

	var player api.PlayerResponse
	if err := json.Unmarshal(snap.PlayerJSON, &player); err != nil {
		return nil, fmt.Errorf("decode cached player: %w", err)
	}

	raws, err := insights.ParseBattleLog(snap.BattleLogJSON)
	if err != nil {
		return nil, err
	}

	profile := domain.PlayerProfile{
		Name:            player.Name,
		Tag:             player.Tag,
		CurrentTrophies: player.Trophies,
		BestTrophies:    player.BestTrophies,
	}
	records := insights.Normalize(raws, profile.Tag)
	report := insights.Analyze(profile, records)

	reportID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate report id: %w", err)
	}

	s.logger.Info().
		Str("tag", tag).
		Str("report_id", reportID).
		Int("battles", len(records)).
		Msg("wrapped report built")

	return &WrappedResult{
		ReportID: reportID,
		Player: PlayerSummary{
			Tag:            player.Tag,
			Name:           player.Name,
			ExpLevel:       player.ExpLevel,
			Trophies:       player.Trophies,
			BestTrophies:   player.BestTrophies,
			Wins:           player.Wins,
			Losses:         player.Losses,
			BattleCount:    player.BattleCount,
			ThreeCrownWins: player.ThreeCrownWins,
			Arena:          player.Arena.Name,
			ClanName:       player.Clan.Name,
		},
		Insights: report,
	}, nil
}

// freshSnapshot returns a cached snapshot when it is within the TTL,
// otherwise fetches profile and battle log concurrently and caches
// the result. A cache write failure is logged but does not fail the
// request.
func (s *WrappedService) freshSnapshot(ctx context.Context, tag string, refresh bool) (*domain.Snapshot, error) {
	if !refresh {
		dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		defer dbCancel()

		stale, err := s.store.IsStale(dbCtx, tag, s.ttl)
		if err != nil {
			s.logger.Warn().Err(err).Str("tag", tag).Msg("snapshot freshness check failed, fetching from API")
		} else if !stale {
			snap, err := s.store.Get(dbCtx, tag)
			if err == nil {
				s.logger.Debug().Str("tag", tag).Time("fetched_at", snap.FetchedAt).Msg("using cached snapshot")
				return snap, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn().Err(err).Str("tag", tag).Msg("snapshot lookup failed, fetching from API")
			}
		}
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(apiCtx)
	var player *api.PlayerResponse
	var battleLog []byte

	g.Go(func() error {
		var err error
		player, err = s.client.GetPlayer(gCtx, tag)
		return err
	})
	g.Go(func() error {
		var err error
		battleLog, err = s.client.GetBattleLog(gCtx, tag)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("tag", tag).Msg("failed to fetch player data")
		return nil, fmt.Errorf("fetch player data: %w", err)
	}

	playerJSON, err := json.Marshal(player)
	if err != nil {
		return nil, fmt.Errorf("encode player snapshot: %w", err)
	}

	snap := &domain.Snapshot{
		Tag:           tag,
		PlayerJSON:    playerJSON,
		BattleLogJSON: battleLog,
		FetchedAt:     time.Now(),
	}
	if err := s.store.Upsert(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("tag", tag).Msg("failed to cache snapshot")
	}
	return snap, nil
}
