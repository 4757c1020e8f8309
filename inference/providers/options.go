package providers

import (
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Config contains the ONNX Runtime session settings.
type Config struct {
	// Provider is the execution provider to append. CPU needs no explicit configuration.
	Provider Provider `json:"provider" yaml:"provider" koanf:"provider"`
	// IntraOpNumThreads sets threads for parallelizing ops. 0 uses the runtime default.
	IntraOpNumThreads int `json:"intra_op_num_threads" yaml:"intra_op_num_threads" koanf:"intraopnumthreads"`
	// InterOpNumThreads sets threads for parallelizing independent ops. 0 uses the runtime default.
	InterOpNumThreads int `json:"inter_op_num_threads" yaml:"inter_op_num_threads" koanf:"interopnumthreads"`
	// Options are passed to the provider, e.g. OpenVINO's device_type.
	Options map[string]string `json:"options" yaml:"options" koanf:"options"`
}

// DefaultConfig returns a CPU configuration sized to the host.
func DefaultConfig() Config {
	numCPU := runtime.NumCPU()
	return Config{
		Provider:          CPUExecutionProvider,
		IntraOpNumThreads: max(1, numCPU/2),
		InterOpNumThreads: max(1, numCPU/4),
		Options:           map[string]string{},
	}
}

// SessionOptions builds ONNX Runtime session options from the configuration.
// The caller owns the result and must Destroy it.
//
// Arguments:
//   - config: The session settings.
//
// Returns:
//   - *ort.SessionOptions: Configured session options.
//   - error: Configuration error if any.
//
// @example
// options, err := SessionOptions(DefaultConfig())
//
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// defer options.Destroy()
func SessionOptions(config Config) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}

	if err := options.SetIntraOpNumThreads(config.IntraOpNumThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "failed to set intra-op threads")
	}
	if err := options.SetInterOpNumThreads(config.InterOpNumThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "failed to set inter-op threads")
	}

	if err := appendProvider(options, config); err != nil {
		options.Destroy()
		return nil, err
	}

	return options, nil
}

func appendProvider(options *ort.SessionOptions, config Config) error {
	switch config.Provider {
	case CPUExecutionProvider, "":
		return nil
	case CoreMLExecutionProvider:
		var flags uint64
		if s, ok := config.Options["flags"]; ok {
			v, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return errors.Wrapf(err, "invalid coreml flags %q", s)
			}
			flags = v
		}
		return errors.Wrap(options.AppendExecutionProviderCoreML(uint32(flags)), "failed to enable CoreML")
	case OpenVINOExecutionProvider:
		return errors.Wrap(options.AppendExecutionProviderOpenVINO(config.Options), "failed to enable OpenVINO")
	default:
		return errors.Wrapf(ErrUnsupportedProvider, "%q", config.Provider)
	}
}
