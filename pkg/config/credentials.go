package config

// Credentials is either Configured or Unconfigured. It is resolved once at
// startup and handed to the engine; an Unconfigured value is a valid state
// that selects the local evaluators.
type Credentials interface {
	isCredentials()
}

// Configured carries the provider name and its API key.
type Configured struct {
	Provider string
	APIKey   string
}

// Unconfigured means no provider key is available.
type Unconfigured struct{}

func (Configured) isCredentials()   {}
func (Unconfigured) isCredentials() {}
