package config

// BackendConfig holds base URLs for the services the dashboard fronts.
type BackendConfig struct {
	ChatURL   string `yaml:"chat_url" koanf:"chat_url"`
	FilesURL  string `yaml:"files_url" koanf:"files_url"`
	StatusURL string `yaml:"status_url" koanf:"status_url"`
}

// UploadConfig constrains chat attachments before any request is issued.
type UploadConfig struct {
	MaxFileSizeMB int      `yaml:"max_file_size_mb" koanf:"max_file_size_mb"`
	AllowedTypes  []string `yaml:"allowed_types" koanf:"allowed_types"`
}

// PollConfig controls the backend health and suggestions pollers.
type PollConfig struct {
	StatusIntervalSeconds      int `yaml:"status_interval_seconds" koanf:"status_interval_seconds"`
	SuggestionsIntervalSeconds int `yaml:"suggestions_interval_seconds" koanf:"suggestions_interval_seconds"`
	TimeoutSeconds             int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// Config is the top-level matdash configuration, corresponding to .matdash.yml.
type Config struct {
	Port            int           `yaml:"port" koanf:"port"`
	Backends        BackendConfig `yaml:"backends" koanf:"backends"`
	Upload          UploadConfig  `yaml:"upload" koanf:"upload"`
	Poll            PollConfig    `yaml:"poll" koanf:"poll"`
	TreeDepth       int           `yaml:"tree_depth" koanf:"tree_depth"`
	HistoryDB       string        `yaml:"history_db" koanf:"history_db"`
	LogLevel        string        `yaml:"log_level" koanf:"log_level"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
