package classifier

import (
	"fmt"
	"os"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// Classifier wraps the packaged ONNX image-classification model. The
// mobile recognition path requires the model to be present even though
// prediction currently flows through OCR; a failed load at startup must
// refuse mobile requests rather than degrade silently.
type Classifier struct {
	session    *onnxrt.DynamicAdvancedSession
	inputName  string
	outputName string
}

// New loads the classification model from modelPath. Returns an error
// when the ONNX runtime or the model file is unavailable; callers keep
// running without the mobile surface in that case.
func New(modelPath string) (*Classifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := setSharedLibraryPath(); err != nil {
		return nil, err
	}

	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("init onnx: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("io info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("unexpected io (in:%d out:%d)", len(inputs), len(outputs))
	}

	in := inputs[0]
	out := outputs[0]

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session opts: %w", err)
	}
	defer func() { _ = opts.Destroy() }()

	session, err := onnxrt.NewDynamicAdvancedSession(modelPath, []string{in.Name}, []string{out.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Classifier{
		session:    session,
		inputName:  in.Name,
		outputName: out.Name,
	}, nil
}

// Available reports whether the model is loaded and usable
func (c *Classifier) Available() bool {
	return c != nil && c.session != nil
}

// Close releases the ONNX session
func (c *Classifier) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	return err
}

// setSharedLibraryPath points the runtime at an installed onnxruntime
// shared library, preferring system locations.
func setSharedLibraryPath() error {
	systemPaths := []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
	for _, path := range systemPaths {
		if _, err := os.Stat(path); err == nil {
			onnxrt.SetSharedLibraryPath(path)
			return nil
		}
	}
	if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}
	return fmt.Errorf("onnxruntime shared library not found")
}
