package searcher

// Hyperparameters for the planner

// Weight of the score after the first simulated turn, added to the terminal score so that
// plans which pay off early are preferred.
const PartialScoreWeight = 0.3

// Probability that a crossover gene is taken from the second parent.
const CrossoverRate = 0.5
