package config

import "time"

// NewEngineForTest creates an Engine config for testing purposes
func NewEngineForTest(path string, topK, workers int) *Engine {
	return &Engine{
		path:    path,
		topK:    topK,
		workers: workers,
	}
}

// NewEncoderForTest creates an Encoder config for testing purposes
func NewEncoderForTest(kind, projectID string, dimension int) *Encoder {
	return &Encoder{
		kind:        kind,
		projectID:   projectID,
		location:    "us-central1",
		model:       "text-embedding-004",
		dimension:   dimension,
		batchSize:   10,
		concurrency: 1,
		timeout:     time.Second,
		failures:    1,
		cooldown:    time.Second,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{
		backend:   backend,
		projectID: projectID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}
