package domain

// PredictionBudget is the fixed number of points a team may allocate across
// voted-out predictions for a single episode.
const PredictionBudget = 10

// SeasonPredictionWinnerQuestion is the season-prediction question that the
// winner declaration auto-grades.
const SeasonPredictionWinnerQuestion = "winner"
