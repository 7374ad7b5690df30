package installer

// SetupConfig is what the wizard writes to the runtime .env file.
type SetupConfig struct {
	APIKey  string `env:"ZHIPU_API_KEY"`
	BaseURL string `env:"ZHIPU_BASE_URL"`
	AgentID string `env:"ZHIPU_AGENT_ID"`
}

type InstallState struct {
	RuntimePath string
	Config      SetupConfig
	// CustomURL is set when the user picked a non-default endpoint.
	CustomURL bool
	SavedTo   string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{RuntimePath: runtimePath}
}
