package openai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/halcyard/visimil/vision"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OCR implements vision.OCRProducer by prompting a multimodal chat model to
// transcribe visible text. Results are cached with TTL eviction, keyed by a
// content hash of the image.
type OCR struct {
	llm    *openai.LLM
	cache  *vision.ResultCache
	logger *slog.Logger
}

var _ vision.OCRProducer = (*OCR)(nil)

// newOCR is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOCR(config *vision.Config) (*OCR, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.OCRHost),
		openai.WithToken("none"),
		openai.WithModel(config.OCRModel),
	)
	if err != nil {
		return nil, err
	}

	cache, err := vision.NewResultCache(config.OCRCacheTTL)
	if err != nil {
		return nil, err
	}

	return &OCR{
		llm:    llm,
		cache:  cache,
		logger: slog.Default().With("component", "openai-ocr"),
	}, nil
}

// NewOCR creates a new OCR producer using the provided configuration.
//
// Returns vision.OCRProducer interface to enforce abstraction.
func NewOCR(config *vision.Config) (vision.OCRProducer, error) {
	return newOCR(config)
}

// Close releases the result cache.
func (o *OCR) Close() error {
	o.cache.Close()
	return nil
}

// Recognize extracts text from an image, consulting the result cache first.
func (o *OCR) Recognize(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
	if len(image) == 0 {
		return nil, vision.ErrEmptyImage
	}
	if cached, ok := o.cache.Get(image, mode); ok {
		o.logger.Debug("ocr cache hit", "mode", mode)
		return cached, nil
	}
	return o.recognize(ctx, image, mode)
}

// RecognizeFresh extracts text from an image, bypassing the result cache.
func (o *OCR) RecognizeFresh(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
	if len(image) == 0 {
		return nil, vision.ErrEmptyImage
	}
	return o.recognize(ctx, image, mode)
}

func (o *OCR) recognize(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
	prompt := quickOCRPrompt
	confidence := quickConfidence
	if mode == vision.OCRModeThorough {
		prompt = thoroughOCRPrompt
		confidence = thoroughConfidence
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(http.DetectContentType(image), image),
				llms.TextPart(prompt),
			},
		},
	}

	resp, err := o.llm.GenerateContent(ctx, content, llms.WithTemperature(0))
	if err != nil {
		// Recognition failures degrade to an empty result; text is an
		// optional signal and must never fail an ingestion or search.
		o.logger.Warn("ocr request failed, returning empty result", "err", err)
		return &vision.Result{}, nil
	}
	if len(resp.Choices) == 0 {
		o.logger.Warn("ocr service returned no choices")
		return &vision.Result{}, nil
	}

	result := parseTranscription(resp.Choices[0].Content, confidence)
	o.cache.Put(image, mode, result)
	return result, nil
}

// parseTranscription converts the model's reply to an OCR result.
func parseTranscription(reply string, confidence float64) *vision.Result {
	text := strings.TrimSpace(reply)
	if text == "" || strings.EqualFold(text, noTextSentinel) {
		return &vision.Result{}
	}

	fields := strings.Fields(text)
	words := make([]vision.Word, len(fields))
	for i, f := range fields {
		words[i] = vision.Word{Text: f, Confidence: confidence}
	}

	return &vision.Result{
		Text:       text,
		Confidence: confidence,
		Words:      words,
	}
}
