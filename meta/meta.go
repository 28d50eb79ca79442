// meta/meta.go
package meta

// MAX_TURNS caps the length of a locally refereed game.
const MAX_TURNS = 200

// GAMES_PER_MATCH_UP defines the number of games played for each experiment match-up.
const GAMES_PER_MATCH_UP = 20

// RESULTS_DIR is where experiment CSV files and the results database are written.
const RESULTS_DIR = "results"

// RESULTS_DB is the SQLite file inside RESULTS_DIR that collects every experiment run.
const RESULTS_DB = "results.db"
