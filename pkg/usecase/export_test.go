package usecase

// ScoreCourse is exported for testing
var ScoreCourse = scoreCourse
