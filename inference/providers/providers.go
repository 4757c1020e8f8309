// Package providers - ONNX Runtime execution providers and session options.
package providers

import (
	"strings"

	"github.com/pkg/errors"
)

// Provider represents different ONNX Runtime execution providers
type Provider string

const (
	// CPUExecutionProvider uses CPU for inference
	CPUExecutionProvider Provider = "cpu"

	// CoreMLExecutionProvider uses Apple CoreML for macOS/iOS acceleration
	CoreMLExecutionProvider Provider = "coreml"

	// OpenVINOExecutionProvider uses Intel OpenVINO for inference optimization
	OpenVINOExecutionProvider Provider = "openvino"
)

// ErrUnsupportedProvider is returned for a provider name this build cannot enable.
var ErrUnsupportedProvider = errors.New("unsupported execution provider")

// ParseProvider resolves a case-insensitive provider name. An empty name is CPU.
//
// Arguments:
//   - name: The provider name, e.g. "cpu" or "CoreML".
//
// Returns:
//   - Provider: The execution provider.
//   - error: ErrUnsupportedProvider (wrapped) for an unknown name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return CPUExecutionProvider, nil
	case CPUExecutionProvider, CoreMLExecutionProvider, OpenVINOExecutionProvider:
		return p, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedProvider, "%q", name)
	}
}
