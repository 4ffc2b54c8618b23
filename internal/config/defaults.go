package config

// DefaultAllowedTypes are the declared media types an attachment may carry.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port: 8080,
		Backends: BackendConfig{
			ChatURL:   "http://localhost:5001",
			FilesURL:  "http://localhost:5001",
			StatusURL: "http://localhost:5001",
		},
		Upload: UploadConfig{
			MaxFileSizeMB: 10,
			AllowedTypes:  DefaultAllowedTypes,
		},
		Poll: PollConfig{
			StatusIntervalSeconds:      30,
			SuggestionsIntervalSeconds: 60,
			TimeoutSeconds:             10,
		},
		TreeDepth: 2,
		HistoryDB: "matdash.db",
		LogLevel:  "info",
	}
}
