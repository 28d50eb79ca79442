package metrics

import "time"

// AgentConfig describes one contestant of an experiment.
type AgentConfig struct {
	ID          int
	Kind        string        // "planner" or "navigator"
	Budget      time.Duration // Per turn, 0 for the rules' budget
	Population  int           // Planner only, 0 for the rules' value
	Depth       int           // Planner only, 0 for the rules' value
	Generations int           // Planner only, 0 for no cap
	Scoring     string        // "rum" or "aggressive"
}

type GameRecord struct {
	ID     int
	Run    string // Experiment run id
	Agent1 int    // AgentConfig.ID
	Agent2 int    // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}
