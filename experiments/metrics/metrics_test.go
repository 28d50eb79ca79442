package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts one search", func(t *testing.T) {
		c := NewCollector()
		c.Start(50*time.Millisecond, 20, 4)
		c.SetWarmStart(true)
		for range 3 {
			c.AddGeneration()
		}
		for range 61 {
			c.AddEvaluation()
		}
		c.SetBest(2, 123.5)

		m := c.Complete()
		require.Equal(t, 50*time.Millisecond, m.Budget)
		require.Equal(t, 20, m.Population)
		require.Equal(t, 4, m.Depth)
		require.Equal(t, 3, m.Generations)
		require.Equal(t, 61, m.Evaluations)
		require.Equal(t, 2, m.BestGeneration)
		require.Equal(t, 123.5, m.BestScore)
		require.True(t, m.IsWarmStart)
		require.Positive(t, m.Duration)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(time.Second, 1, 1)
		c.AddGeneration()
		c.SetWarmStart(true)
		c.SetBest(1, -4)
		c.Start(time.Second, 1, 1)

		m := c.Complete()
		require.Zero(t, m.Generations)
		require.Zero(t, m.BestScore)
		require.False(t, m.IsWarmStart)
	})

	t.Run("dummy collects nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(time.Second, 10, 5)
		c.AddEvaluation()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "depth")
	require.NoError(t, err)

	err = w.WriteAgentConfigs([]AgentConfig{{ID: 1, Kind: "planner", Budget: 47 * time.Millisecond, Depth: 3, Scoring: "rum"}})
	require.NoError(t, err)
	rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "planner", "47ms", "0", "3", "0", "rum"}, rows[1])

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = w.WriteGameRecords([]GameRecord{{
		ID:     7,
		Run:    "abc",
		Agent1: 1,
		Agent2: 2,
		GameMetric: GameMetric{
			Seed:      9,
			Winner:    1,
			Turns:     120,
			StartTime: start,
			EndTime:   start.Add(time.Minute),
			Duration:  time.Minute,
			Health:    [2]int{0, 64},
		},
	}})
	require.NoError(t, err)
	rows = readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Equal(t, []string{"7", "abc", "1", "2", "9", "1", "120", "0", "64", "2024-05-01T12:00:00Z", "2024-05-01T12:01:00Z", "1m0s"}, rows[1])

	err = w.WriteMoveRecords([]MoveRecord{{Game: 7, MoveMetric: MoveMetric{Turn: 3, Player: 1, SearchMetric: SearchMetric{Generations: 4, Evaluations: 200, BestScore: 1.5, IsWarmStart: true}}}})
	require.NoError(t, err)
	rows = readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, rows, 2)
	require.Equal(t, "is_warm_start", rows[0][len(rows[0])-1])
	require.Equal(t, []string{"7", "3", "1", "0s", "0s", "4", "200", "0", "1.50", "true"}, rows[1])
}

func TestStore(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	configs := []AgentConfig{{ID: 1, Kind: "planner"}, {ID: 2, Kind: "navigator"}}
	require.NoError(t, store.SaveRun("run-1", "strength", configs))
	name, err := store.RunName("run-1")
	require.NoError(t, err)
	require.Equal(t, "strength", name)

	start := time.Unix(1700000000, 0)
	games := []GameRecord{
		{ID: 2, Run: "run-1", Agent1: 1, Agent2: 2, GameMetric: GameMetric{Seed: 5, Winner: -1, Turns: 200, StartTime: start, EndTime: start.Add(time.Second), Health: [2]int{30, 30}}},
		{ID: 1, Run: "run-1", Agent1: 2, Agent2: 1, GameMetric: GameMetric{Seed: 4, Winner: 0, Turns: 80, StartTime: start, EndTime: start.Add(2 * time.Second), Health: [2]int{55, 0}}},
	}
	require.NoError(t, store.SaveGames(games))
	require.NoError(t, store.SaveMoves("run-1", []MoveRecord{{Game: 1}, {Game: 1, MoveMetric: MoveMetric{Turn: 1}}}))

	got, err := store.Games("run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].ID)
	require.Equal(t, uint64(4), got[0].Seed)
	require.Equal(t, [2]int{55, 0}, got[0].Health)
	require.Equal(t, 2*time.Second, got[0].Duration)
	require.Equal(t, -1, got[1].Winner)

	count, err := store.MoveCount("run-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	t.Run("duplicate run is rejected", func(t *testing.T) {
		require.Error(t, store.SaveRun("run-1", "again", nil))
	})

	t.Run("unknown run", func(t *testing.T) {
		got, err := store.Games("missing")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}
