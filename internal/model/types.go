package model

// Metadata describes the exported ONNX model: tensor shapes, the class
// labels in output order, and the square input size in pixels.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}
