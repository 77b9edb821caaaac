package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressSnapshotSchema_UpsertSQL(t *testing.T) {
	schema := ProgressSnapshotSchema(10)
	sql := schema.UpsertSQL()

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO player_progress AS t (player_id, coins, score, current_stage,"))
	assert.Contains(t, sql, "ON CONFLICT (player_id) DO UPDATE SET")
	// replace: отсутствующее значение сохраняет старое
	assert.Contains(t, sql, "coins = COALESCE($2::BIGINT, t.coins)")
	// стадия по умолчанию 1 при вставке
	assert.Contains(t, sql, "COALESCE($4::INTEGER, 1)")
	assert.Contains(t, sql, "updated_at = NOW()")
	// derived поле никогда не пишется
	assert.NotContains(t, sql, "progress_percentage")
	assert.True(t, strings.HasSuffix(sql, "RETURNING player_id, coins, score, current_stage, completed_quests, map_changes, collected_items, playtime_seconds, updated_at, created_at"))
}

func TestQuestCompletionSchema_UpsertSQL(t *testing.T) {
	sql := QuestCompletionSchema().UpsertSQL()

	assert.Contains(t, sql, "ON CONFLICT (player_id, quest_id) DO UPDATE SET")
	assert.Contains(t, sql, "is_completed = t.is_completed OR COALESCE($3::BOOLEAN, FALSE)")
	assert.Contains(t, sql, "score_earned = t.score_earned + COALESCE($4::BIGINT, 0)")
	assert.Contains(t, sql, "attempts = t.attempts + COALESCE($6::INTEGER, 0)")
	assert.Contains(t, sql, "completed_at = COALESCE(t.completed_at, $7::TIMESTAMPTZ)")
}

func TestMergeSchema_InputColumnsAndBindArgs(t *testing.T) {
	schema := ProgressSnapshotSchema(10)
	assert.Equal(t, []string{"coins", "score", "current_stage", "completed_quests", "map_changes", "collected_items", "playtime_seconds"}, schema.InputColumns())

	coins := int64(50)
	args := schema.BindArgs([]any{"p1"}, ProgressReport{Coins: &coins}.Values())
	require.Len(t, args, 8)
	assert.Equal(t, "p1", args[0])
	assert.Equal(t, int64(50), args[1])
	for _, a := range args[2:] {
		assert.Nil(t, a)
	}
}

func TestProgressReport_Normalize(t *testing.T) {
	schema := ProgressSnapshotSchema(10)

	t.Run("stage below minimum", func(t *testing.T) {
		stage := -5
		out := ProgressReport{CurrentStage: &stage}.Normalize(schema)
		assert.Equal(t, 1, *out.CurrentStage)
	})

	t.Run("stage above maximum", func(t *testing.T) {
		stage := 999
		out := ProgressReport{CurrentStage: &stage}.Normalize(schema)
		assert.Equal(t, 10, *out.CurrentStage)
	})

	t.Run("negative counters clamp to zero", func(t *testing.T) {
		coins := int64(-10)
		quests := -1
		out := ProgressReport{Coins: &coins, CompletedQuests: &quests}.Normalize(schema)
		assert.Equal(t, int64(0), *out.Coins)
		assert.Equal(t, 0, *out.CompletedQuests)
	})

	t.Run("absent fields stay absent", func(t *testing.T) {
		out := ProgressReport{}.Normalize(schema)
		assert.Equal(t, ProgressReport{}, out)
		for col, v := range out.Values() {
			assert.Nil(t, v, col)
		}
	})

	t.Run("integer counters clamp to column range", func(t *testing.T) {
		quests := 3_000_000_000
		items := 2_147_483_648
		playtime := int64(3_000_000_000)
		out := ProgressReport{CompletedQuests: &quests, CollectedItems: &items, PlaytimeSeconds: &playtime}.Normalize(schema)
		assert.Equal(t, math.MaxInt32, *out.CompletedQuests)
		assert.Equal(t, math.MaxInt32, *out.CollectedItems)
		// BIGINT колонка не зажимается сверху
		assert.Equal(t, int64(3_000_000_000), *out.PlaytimeSeconds)
	})

	t.Run("huge max stage is capped to column range", func(t *testing.T) {
		stage := 3_000_000_000
		out := ProgressReport{CurrentStage: &stage}.Normalize(ProgressSnapshotSchema(4_000_000_000))
		assert.Equal(t, math.MaxInt32, *out.CurrentStage)
	})
}

func TestQuestReport(t *testing.T) {
	schema := QuestCompletionSchema()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("completed defaults to true", func(t *testing.T) {
		v := QuestReport{}.Values(at)
		assert.Equal(t, true, v["is_completed"])
		assert.Equal(t, at, v["completed_at"])
		assert.Equal(t, 1, v["attempts"])
	})

	t.Run("failed attempt has no completed_at", func(t *testing.T) {
		no := false
		v := QuestReport{Completed: &no}.Values(at)
		assert.Equal(t, false, v["is_completed"])
		assert.Nil(t, v["completed_at"])
	})

	t.Run("negative earned clamps to zero", func(t *testing.T) {
		score := int64(-3)
		out := QuestReport{ScoreEarned: &score}.Normalize(schema)
		assert.Equal(t, int64(0), *out.ScoreEarned)
	})
}

func TestProgressPercentage(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{10, 25, 40},
		{25, 25, 100},
		{30, 25, 100},
		{0, 25, 0},
		{1, 3, 33},
		{5, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ProgressPercentage(tc.completed, tc.total), "completed=%d total=%d", tc.completed, tc.total)
	}
}


func TestMultiStoreWriteResult(t *testing.T) {
	t.Run("all succeeded has no warning", func(t *testing.T) {
		var r MultiStoreWriteResult
		r.Add(StoreOutcome{Store: StoreRoster, Rows: 3})
		r.Add(StoreOutcome{Store: StoreAssignment, Rows: 1})
		assert.NoError(t, r.Warning())
		assert.True(t, r.Succeeded(StoreRoster))
	})

	t.Run("partial failure is a warning", func(t *testing.T) {
		var r MultiStoreWriteResult
		r.Add(StoreOutcome{Store: StoreRoster, Rows: 3})
		r.Add(StoreOutcome{Store: StoreArchiveLog, Err: ErrStorage})
		warn := r.Warning()
		require.Error(t, warn)
		assert.ErrorIs(t, warn, ErrPartialReconciliation)
		var partial *PartialReconciliationError
		require.ErrorAs(t, warn, &partial)
		assert.Equal(t, []string{"archived_sections: storage error"}, partial.Messages())
	})

	t.Run("total failure is not a warning", func(t *testing.T) {
		var r MultiStoreWriteResult
		r.Add(StoreOutcome{Store: StoreRoster, Err: ErrStorage})
		assert.False(t, r.AnySucceeded())
		assert.NoError(t, r.Warning())
	})
}

func TestErrPlayerNotFoundIsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrPlayerNotFound, ErrNotFound)
}
