package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar          = "PORT"
	appNameVar          = "APP_NAME"
	sessionVersionVar   = "SESSION_VERSION"
	identityAPIAddrVar  = "API_ADDR"
	useLocalServicesVar = "USE_LOCAL_SERVICES"
	publishClientIDVar  = "PUBLISH_CLIENT_ID"
	publishSecretVar    = "PUBLISH_CLIENT_SECRET"
	analyzeClientIDVar  = "ANALYZE_CLIENT_ID"
	analyzeSecretVar    = "ANALYZE_CLIENT_SECRET"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ SessionConfig = EnvVars{}
var _ IdentityConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "80")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Suite Login Service")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == "production"
}

// UseProductionServices reports whether remote collaborators (session
// service, identity API) should be addressed at their production
// endpoints. A production deployment can still opt into local services
// for debugging.
func (e EnvVars) UseProductionServices() bool {
	return e.IsProduction() && GetEnv(useLocalServicesVar, "") != "true"
}

// GetSessionVersion is the session service version used for new
// sessions. Existing sessions carry their own version in the token.
func (EnvVars) GetSessionVersion() string {
	return GetEnv(sessionVersionVar, "2")
}

func (EnvVars) GetIdentityAPIAddr() string {
	return GetEnv(identityAPIAddrVar, "http://api.local.appsuite.com")
}

func (EnvVars) GetPublishClientID() string {
	return GetEnv(publishClientIDVar, "")
}

func (EnvVars) GetPublishClientSecret() string {
	return GetEnv(publishSecretVar, "")
}

func (EnvVars) GetAnalyzeClientID() string {
	return GetEnv(analyzeClientIDVar, "")
}

func (EnvVars) GetAnalyzeClientSecret() string {
	return GetEnv(analyzeSecretVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
