package core

// ProcessorConfig defines common real-time processing settings.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the nominal host block size.
	BlockSize int
	// MaxBlockSize bounds per-call scratch memory. Larger render requests
	// are split into chunks of at most this many frames.
	MaxBlockSize int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for low-latency streaming.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:   48000,
		BlockSize:    512,
		MaxBlockSize: 8192,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the nominal processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxBlockSize sets the largest block processed in one pass.
func WithMaxBlockSize(maxBlockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if maxBlockSize > 0 {
			cfg.MaxBlockSize = maxBlockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
// MaxBlockSize is raised to BlockSize when smaller.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.MaxBlockSize < cfg.BlockSize {
		cfg.MaxBlockSize = cfg.BlockSize
	}
	return cfg
}
