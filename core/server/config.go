package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// ResolveLimit caps the number of SKUs accepted by one resolve request.
	ResolveLimit int `mapstructure:"resolve_limit" default:"100" validate:"gte=1"`
}

// IsProtected reports whether requests must carry the API key.
func (c Config) IsProtected() bool {
	return c.ApiKey != ""
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
