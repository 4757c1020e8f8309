// Package inference - Inference sessions.
package inference

import (
	"context"
	"os"
	"sync"

	"github.com/nvr-ai/go-yolo/inference/providers"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ErrSessionClosed is returned by Run after Close.
var ErrSessionClosed = errors.New("session closed")

// Runner executes a detector graph on one prepared input tensor.
type Runner interface {
	Run(ctx context.Context, input []float32) ([]float32, error)
}

// SessionConfig describes the graph to load and how to run it.
type SessionConfig struct {
	// SharedLibPath is the onnxruntime library. Empty uses providers.GetSharedLibPath.
	SharedLibPath string
	// Model supplies the graph path, tensor names and tensor shapes.
	Model model.Options
	// Provider configures threads and the execution provider.
	Provider providers.Config
}

// Session represents a model session from the onnxruntime. Run calls are
// serialized because the input and output tensors are bound to the session.
type Session struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

var initMu sync.Mutex

// initializeEnvironment loads the shared library once per process.
func initializeEnvironment(libPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	if libPath == "" {
		p, err := providers.GetSharedLibPath()
		if err != nil {
			return err
		}
		libPath = p
	}

	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
	}

	ort.SetSharedLibraryPath(libPath)
	return errors.Wrap(ort.InitializeEnvironment(), "error initializing ORT environment")
}

// InputShape is the NCHW shape of a square RGB input.
func InputShape(size int) ort.Shape {
	return ort.NewShape(1, 3, int64(size), int64(size))
}

// OutputShape is the batch-of-one shape of a grid output in the given layout.
//
// Arguments:
//   - shape: The logical grid shape.
//   - layout: The memory order the graph emits.
//
// Returns:
//   - [1, A*(5+C), H, W] for channel-major, [1, H, W, A*(5+C)] otherwise.
func OutputShape(shape postprocess.GridShape, layout postprocess.Layout) ort.Shape {
	depth := int64(shape.Anchors * shape.Channels())
	if layout == postprocess.LayoutChannelMajor {
		return ort.NewShape(1, depth, int64(shape.Height), int64(shape.Width))
	}
	return ort.NewShape(1, int64(shape.Height), int64(shape.Width), depth)
}

// NewSession loads the model and binds input and output tensors to it.
//
// Arguments:
//   - config: The model and runtime configuration.
//
// Returns:
//   - *Session: The session. Close it when done.
//   - error: An error if the library, model or tensors cannot be set up.
func NewSession(config SessionConfig) (*Session, error) {
	m := config.Model
	if m.Path == "" || m.Input == "" || m.Output == "" {
		return nil, errors.Errorf("model path, input and output names are required, got %q %q %q",
			m.Path, m.Input, m.Output)
	}
	if m.InputSize <= 0 {
		return nil, errors.Errorf("invalid model input size %d", m.InputSize)
	}
	if err := m.Shape.Validate(); err != nil {
		return nil, err
	}

	if err := initializeEnvironment(config.SharedLibPath); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](InputShape(m.InputSize))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](OutputShape(m.Shape, m.Layout))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := providers.SessionOptions(config.Provider)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(
		m.Path,
		[]string{m.Input},
		[]string{m.Output},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Run copies input into the bound input tensor, runs the graph and returns a
// copy of the output tensor.
//
// Arguments:
//   - ctx: Checked before the graph runs. A running graph is not interrupted.
//   - input: The prepared NCHW input. Its length must match the input tensor.
//
// Returns:
//   - []float32: The flat output, owned by the caller.
//   - error: ErrSessionClosed, a size mismatch, or a runtime failure.
func (s *Session) Run(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, ErrSessionClosed
	}

	dst := s.input.GetData()
	if len(input) != len(dst) {
		return nil, errors.Errorf("input holds %d floats, session expects %d", len(input), len(dst))
	}
	copy(dst, input)

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	return append([]float32(nil), s.output.GetData()...), nil
}

// Close releases the resources associated with the Session. It is safe to
// call more than once.
//
// Returns:
//   - No return values.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
