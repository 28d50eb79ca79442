package metrics

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store keeps experiment results in a SQLite database so runs can be compared later.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		started_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_configs (
		run TEXT NOT NULL,
		id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		budget_ns INTEGER NOT NULL,
		population INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		generations INTEGER NOT NULL,
		scoring TEXT NOT NULL,
		PRIMARY KEY (run, id)
	);

	CREATE TABLE IF NOT EXISTS games (
		run TEXT NOT NULL,
		id INTEGER NOT NULL,
		agent1 INTEGER NOT NULL,
		agent2 INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		winner INTEGER NOT NULL,
		turns INTEGER NOT NULL,
		health0 INTEGER NOT NULL,
		health1 INTEGER NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		PRIMARY KEY (run, id)
	);

	CREATE TABLE IF NOT EXISTS moves (
		run TEXT NOT NULL,
		game INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		player INTEGER NOT NULL,
		budget_ns INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		generations INTEGER NOT NULL,
		evaluations INTEGER NOT NULL,
		best_generation INTEGER NOT NULL,
		best_score REAL NOT NULL,
		warm_start INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(run, game);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun registers an experiment run and the agents taking part in it.
func (s *Store) SaveRun(id, name string, configs []AgentConfig) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO runs (id, name, started_at) VALUES (?, ?, ?)", id, name, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	for _, c := range configs {
		_, err := tx.Exec(`INSERT INTO agent_configs
			(run, id, kind, budget_ns, population, depth, generations, scoring)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.ID, c.Kind, int64(c.Budget), c.Population, c.Depth, c.Generations, c.Scoring,
		)
		if err != nil {
			return fmt.Errorf("insert agent config %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) SaveGames(records []GameRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO games
		(run, id, agent1, agent2, seed, winner, turns, health0, health1, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Run, r.ID, r.Agent1, r.Agent2, int64(r.Seed), r.Winner, r.Turns,
			r.Health[0], r.Health[1], r.StartTime.UnixNano(), r.EndTime.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert game %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// SaveMoves appends the per-turn search metrics of the given run.
func (s *Store) SaveMoves(run string, records []MoveRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO moves
		(run, game, turn, player, budget_ns, duration_ns, generations, evaluations,
		 best_generation, best_score, warm_start)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		warm := 0
		if r.IsWarmStart {
			warm = 1
		}
		_, err := stmt.Exec(
			run, r.Game, r.Turn, r.Player, int64(r.Budget), int64(r.Duration),
			r.Generations, r.Evaluations, r.BestGeneration, r.BestScore, warm,
		)
		if err != nil {
			return fmt.Errorf("insert move of game %d turn %d: %w", r.Game, r.Turn, err)
		}
	}

	return tx.Commit()
}

type gameRow struct {
	Run       string `db:"run"`
	ID        int    `db:"id"`
	Agent1    int    `db:"agent1"`
	Agent2    int    `db:"agent2"`
	Seed      int64  `db:"seed"`
	Winner    int    `db:"winner"`
	Turns     int    `db:"turns"`
	Health0   int    `db:"health0"`
	Health1   int    `db:"health1"`
	StartTime int64  `db:"start_time"`
	EndTime   int64  `db:"end_time"`
}

// Games returns the games of a run ordered by id.
func (s *Store) Games(run string) ([]GameRecord, error) {
	var rows []gameRow
	err := s.conn.Select(&rows,
		`SELECT run, id, agent1, agent2, seed, winner, turns, health0, health1, start_time, end_time
		FROM games WHERE run = ? ORDER BY id`,
		run,
	)
	if err != nil {
		return nil, fmt.Errorf("select games of run %s: %w", run, err)
	}

	records := make([]GameRecord, 0, len(rows))
	for _, row := range rows {
		start, end := time.Unix(0, row.StartTime), time.Unix(0, row.EndTime)
		records = append(records, GameRecord{
			ID:     row.ID,
			Run:    row.Run,
			Agent1: row.Agent1,
			Agent2: row.Agent2,
			GameMetric: GameMetric{
				Seed:      uint64(row.Seed),
				Winner:    row.Winner,
				Turns:     row.Turns,
				StartTime: start,
				EndTime:   end,
				Duration:  end.Sub(start),
				Health:    [2]int{row.Health0, row.Health1},
			},
		})
	}
	return records, nil
}

// MoveCount returns the number of recorded moves of a run.
func (s *Store) MoveCount(run string) (int, error) {
	var count int
	err := s.conn.Get(&count, "SELECT COUNT(*) FROM moves WHERE run = ?", run)
	return count, err
}

// RunName returns the experiment name a run was registered with.
func (s *Store) RunName(id string) (string, error) {
	var name string
	err := s.conn.Get(&name, "SELECT name FROM runs WHERE id = ?", id)
	return name, err
}
