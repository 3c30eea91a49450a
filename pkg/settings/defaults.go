package settings

const (
	defaultServiceURL     = "http://127.0.0.1:5000"
	defaultTimeoutSeconds = 30

	defaultRecentMessageCount = 10
	defaultFastRerankCount    = 20
	defaultFinalMemoryCount   = 5
	defaultMinRelevanceScore  = 0.5
	defaultMaxMemories        = 10
	defaultMinMemories        = 1

	defaultSyncBatchSize = 10
	defaultSyncPacingMs  = 100

	defaultServerListen = ":8070"

	defaultStreamBroker = "localhost:9092"
	defaultStreamTopic  = "recall.memories"
)

// NewDefaultSettings returns Settings with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultSettings() *Settings {
	return &Settings{
		Version: CurrentV,
		Service: ServiceSettings{
			URL:            defaultServiceURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Capture: CaptureSettings{
			AutoMemory: true,
		},
		Context: ContextSettings{
			Integration:             true,
			RecentMessages:          true,
			RecentMessageCount:      defaultRecentMessageCount,
			FastRerankCount:         defaultFastRerankCount,
			FinalMemoryCount:        defaultFinalMemoryCount,
			UseIntelligentSelection: false,
			MinRelevanceScore:       defaultMinRelevanceScore,
			MaxMemories:             defaultMaxMemories,
			MinMemories:             defaultMinMemories,
		},
		Sync: SyncSettings{
			BatchSize: defaultSyncBatchSize,
			PacingMs:  defaultSyncPacingMs,
		},
		Server: ServerSettings{
			Listen: defaultServerListen,
		},
		Stream: StreamSettings{
			Enabled: false,
			Broker:  defaultStreamBroker,
			Topic:   defaultStreamTopic,
		},
	}
}
