package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortMu guards the process-wide onnxruntime environment.
var ortMu sync.Mutex

func initRuntime(libraryPath string) error {
	ortMu.Lock()
	defer ortMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// ONNXConfig describes an exported ONNX graph with one input and one output.
type ONNXConfig struct {
	Path        string
	LibraryPath string
	InputName   string
	OutputName  string
	InputShape  []int64
	OutputShape []int64
}

// ONNXSession wraps an onnxruntime session bound to fixed input and output
// buffers. Because the buffers are shared, runs are serialized.
type ONNXSession struct {
	mu      sync.Mutex
	cfg     ONNXConfig
	session *ort.AdvancedSession
	in      *ort.Tensor[float32]
	out     *ort.Tensor[float32]
}

// OpenONNX initializes the runtime (once per process) and creates a session.
func OpenONNX(cfg ONNXConfig) (*ONNXSession, error) {
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if len(cfg.InputShape) != 4 {
		return nil, fmt.Errorf("input shape must be NCHW, got %v", cfg.InputShape)
	}
	if len(cfg.OutputShape) != 2 && len(cfg.OutputShape) != 4 {
		return nil, fmt.Errorf("output shape must be [N,classes] or NCHW, got %v", cfg.OutputShape)
	}
	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return &ONNXSession{cfg: cfg, session: session, in: inputTensor, out: outputTensor}, nil
}

func (s *ONNXSession) run(ctx context.Context, in *Tensor) ([]float32, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	want := s.cfg.InputShape
	if int64(in.C) != want[1] || int64(in.H) != want[2] || int64(in.W) != want[3] {
		return nil, fmt.Errorf("input %v does not match model input %v", in.Shape(), want)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	copy(s.in.GetData(), in.Data)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	data := s.out.GetData()
	out := make([]float32, len(data))
	copy(out, data)
	return out, nil
}

// Close destroys the session and its buffers.
func (s *ONNXSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.in != nil {
		s.in.Destroy()
		s.in = nil
	}
	if s.out != nil {
		s.out.Destroy()
		s.out = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	return nil
}

// ONNXBackbone is a session whose output is the last convolutional block.
type ONNXBackbone struct {
	s *ONNXSession
}

// NewONNXBackbone requires an NCHW output.
func NewONNXBackbone(s *ONNXSession) (*ONNXBackbone, error) {
	if len(s.cfg.OutputShape) != 4 {
		return nil, fmt.Errorf("backbone output must be NCHW, got %v", s.cfg.OutputShape)
	}
	return &ONNXBackbone{s: s}, nil
}

func (b *ONNXBackbone) Features(ctx context.Context, in *Tensor) (*Tensor, error) {
	data, err := b.s.run(ctx, in)
	if err != nil {
		return nil, err
	}
	shape := b.s.cfg.OutputShape
	return &Tensor{C: int(shape[1]), H: int(shape[2]), W: int(shape[3]), Data: data}, nil
}

func (b *ONNXBackbone) Channels() int { return int(b.s.cfg.OutputShape[1]) }

// Concurrent is false: the session's buffers are shared.
func (b *ONNXBackbone) Concurrent() bool { return false }

func (b *ONNXBackbone) Close() error { return b.s.Close() }

// ONNXLogits is an end-to-end exported classifier. It does not expose its
// convolutional activations, so it cannot be explained.
type ONNXLogits struct {
	s *ONNXSession
}

// NewONNXLogits requires a [1, classes] output.
func NewONNXLogits(s *ONNXSession) (*ONNXLogits, error) {
	if len(s.cfg.OutputShape) != 2 {
		return nil, fmt.Errorf("classifier output must be [N,classes], got %v", s.cfg.OutputShape)
	}
	return &ONNXLogits{s: s}, nil
}

func (n *ONNXLogits) Forward(ctx context.Context, in *Tensor) ([]float32, error) {
	return n.s.run(ctx, in)
}

func (n *ONNXLogits) OutputWidth() int { return int(n.s.cfg.OutputShape[1]) }

func (n *ONNXLogits) Concurrent() bool { return false }

func (n *ONNXLogits) Close() error { return n.s.Close() }
