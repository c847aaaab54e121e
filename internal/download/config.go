package download

import "time"

// Config is the user-facing configuration for the download service.
type Config struct {
	// OutputPath is the directory downloaded artifacts are placed in.
	// Artifacts are named uniquely per-job (the job ID is embedded in
	// the filename) so concurrent jobs cannot collide.
	OutputPath string `yaml:"output_dir" env:"DOWNLOAD_OUTPUT_DIR" env-default:"downloads"`

	// RetentionSeconds controls how long a job record remains
	// available for polling after its worker terminates.
	RetentionSeconds int `yaml:"retention_seconds" env:"DOWNLOAD_RETENTION_SECONDS" env-default:"300"`

	// CookiesEnvVar names the environment variable which optionally
	// supplies cookie-jar content for the extraction engine.
	CookiesEnvVar string `yaml:"cookies_env_var" env:"DOWNLOAD_COOKIES_ENV_VAR" env-default:"COOKIES_CONTENT"`

	// FfmpegLocation is passed through to the extraction engine for
	// stream merging; an empty value leaves binary discovery to the
	// engine itself.
	FfmpegLocation string `yaml:"ffmpeg_location" env:"FORMAT_FFMPEG_BINARY_PATH"`
}

func (config *Config) RetentionDuration() time.Duration {
	return time.Duration(config.RetentionSeconds) * time.Second
}
