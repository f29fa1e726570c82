package classify

import (
	"context"
	"image"

	"go.uber.org/zap"
)

// Oracle scores a decoded image against the loaded model. Implementations
// must be safe for concurrent use and must not mutate per-call state
// visible to other callers.
type Oracle interface {
	// Classify returns one label per known class with its confidence.
	// Order is the oracle's own ranking and is not relied upon.
	Classify(ctx context.Context, img *image.RGBA) ([]Label, error)
	// Name identifies the loaded model, e.g. its path.
	Name() string
}

// Request is a single classification request: the uploaded bytes and the
// filename the client declared for them.
type Request struct {
	Filename string
	Data     []byte
}

// Pipeline runs validation, decoding, inference and result formatting
// for one request. It is a pure function of its input and the fixed
// oracle handle; concurrent calls are independent.
type Pipeline struct {
	validator *Validator
	oracle    Oracle
	log       *zap.Logger
}

func NewPipeline(validator *Validator, oracle Oracle, log *zap.Logger) *Pipeline {
	return &Pipeline{
		validator: validator,
		oracle:    oracle,
		log:       log,
	}
}

// Classify runs the stages strictly in order, short-circuiting on the
// first failure: a rejected upload is never decoded, an undecodable
// payload never reaches the model.
func (p *Pipeline) Classify(ctx context.Context, req Request) ([]Label, error) {
	if err := p.validator.Validate(req.Filename, int64(len(req.Data))); err != nil {
		return nil, err
	}

	img, err := Decode(req.Data)
	if err != nil {
		p.log.Warn("image decode failed",
			zap.String("filename", req.Filename), zap.Error(err))
		return nil, err
	}

	labels, err := p.oracle.Classify(ctx, img)
	if err != nil {
		p.log.Error("inference failed",
			zap.String("filename", req.Filename), zap.Error(err))
		return nil, inferenceFailure(err)
	}

	return Format(labels), nil
}
