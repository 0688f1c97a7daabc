package config

type Config interface {
	EnvConfig
	SessionConfig
	IdentityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	UseProductionServices() bool
}

type SessionConfig interface {
	GetSessionVersion() string
}

type IdentityConfig interface {
	GetIdentityAPIAddr() string
	GetPublishClientID() string
	GetPublishClientSecret() string
	GetAnalyzeClientID() string
	GetAnalyzeClientSecret() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
