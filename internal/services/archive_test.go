package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/random"
)

func TestArchive_RecordsRounds(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()

	season, err := league.NewSeasonFromSpecs(league.DefaultDivision, league.DefaultClubs(), league.DefaultRivalries(), "Chelsea", 4, random.New(11), quietLogger())
	require.NoError(t, err)
	require.NoError(t, archive.RecordSeason(ctx, season, 11))

	for i := 0; i < 2; i++ {
		summary, err := season.PlayRound(ctx)
		require.NoError(t, err)
		require.NoError(t, archive.RecordRound(ctx, season.ID, summary, season.UserClub))
	}

	matches, err := archive.Matches(ctx, season.ID)
	require.NoError(t, err)
	require.Len(t, matches, 4)
	assert.Equal(t, 1, matches[0].Round)
	assert.Equal(t, 2, matches[3].Round)

	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(matches[0].Events, &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "full_time", events[len(events)-1]["kind"])
	assert.EqualValues(t, matches[0].HomeGoals, events[len(events)-1]["home_score"])

	history, err := archive.ClubHistory(ctx, season.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Chelsea", history[1].Club)
	assert.Equal(t, season.UserClub.BoardTrust, history[1].BoardTrust)
	assert.Equal(t, season.UserClub.Balance.StringFixed(2), history[1].Balance)

	var table []league.TableEntry
	require.NoError(t, json.Unmarshal(history[1].Standings, &table))
	assert.Len(t, table, 4)

	var rec SeasonRecord
	require.NoError(t, archive.db.First(&rec, "id = ?", season.ID).Error)
	assert.Equal(t, int64(11), rec.Seed)
	assert.Equal(t, 6, rec.TotalRounds)
}

func TestArchive_UnknownSeasonIsEmpty(t *testing.T) {
	archive := newTestArchive(t)

	matches, err := archive.Matches(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, matches)
}
