package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetOutputsPath() string
	GetHTTPAddr() string
}

type ClientConfig interface {
	GetCredential() Credential
	GetBaseURL() string
	GetTimeout() time.Duration
	GetMaxRetries() int
	GetRetryDelay() time.Duration
}

type BatchConfig interface {
	GetConcurrency() int
	GetDelay() time.Duration
}
