package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// MaxUploadMB is the per-file size ceiling for uploaded manifests, in
	// megabytes. Files above the ceiling are rejected before parsing.
	MaxUploadMB int `mapstructure:"max_upload_mb" default:"5"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (c Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = 5
	}
	return int64(mb) * 1024 * 1024
}
