package cli

// NewApp is exported for testing
var NewApp = newApp

// GetIndexConfig is exported for testing
var GetIndexConfig = getIndexConfig
