package model

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/classify"
)

// Classifier wraps a loaded ONNX session and satisfies classify.Oracle.
// The session binds fixed input/output tensors, so forward passes are
// serialized with a mutex; callers see a plain concurrent-safe handle.
type Classifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	modelPath    string
}

// New loads the ONNX model and its metadata. Any failure here is a
// startup failure: the process must not serve traffic without a model.
func New(modelPath, metadataPath string) (*Classifier, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	metaFile, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaFile, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("metadata lists no classes")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Classifier{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		modelPath:    modelPath,
	}, nil
}

// Name returns the model path, used as the model identifier in the
// health response.
func (c *Classifier) Name() string { return c.modelPath }

// Classes returns the labels the model can produce, in output order.
func (c *Classifier) Classes() []string { return c.meta.Classes }

// Classify resizes and normalizes the image, runs one forward pass and
// returns softmaxed confidences, one per class. The context bounds the
// forward pass: if it expires first, Classify returns its error while
// the worker goroutine finishes the pass in the background.
func (c *Classifier) Classify(ctx context.Context, img *image.RGBA) ([]classify.Label, error) {
	input := c.preprocess(img)

	type outcome struct {
		scores []float32
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		copy(c.inputTensor.GetData(), input)
		if err := c.session.Run(); err != nil {
			done <- outcome{err: fmt.Errorf("inference failed: %w", err)}
			return
		}
		out := c.outputTensor.GetData()
		scores := make([]float32, len(out))
		copy(scores, out)
		done <- outcome{scores: scores}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return c.label(softmax(res.scores)), nil
	}
}

// preprocess resizes the image to the model's square input size and lays
// the pixels out as normalized planar CHW float32 values.
func (c *Classifier) preprocess(img *image.RGBA) []float32 {
	size := uint(c.meta.ImageSize)
	resized := resize.Resize(size, size, img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	input := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x
			input[idx] = float32(r) / 65535.0
			input[plane+idx] = float32(g) / 65535.0
			input[2*plane+idx] = float32(b) / 65535.0
		}
	}
	return input
}

func (c *Classifier) label(scores []float32) []classify.Label {
	n := len(c.meta.Classes)
	if len(scores) < n {
		n = len(scores)
	}
	labels := make([]classify.Label, n)
	for i := 0; i < n; i++ {
		labels[i] = classify.Label{
			Label: c.meta.Classes[i],
			Score: float64(scores[i]),
		}
	}
	return labels
}

// softmax turns raw logits into confidences summing to 1.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	out := make([]float32, len(logits))
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// Close releases the session and its tensors.
func (c *Classifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}
