package openai

import (
	"github.com/halcyard/visimil/vision"
)

// Provider aggregates the OpenAI-compatible vision services.
type Provider struct {
	embedder *Embedder
	ocr      *OCR
}

var _ vision.Provider = (*Provider)(nil)

// NewProvider creates a provider with an embedder and OCR producer sharing
// the given configuration.
func NewProvider(config *vision.Config) (vision.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	ocr, err := newOCR(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder: embedder,
		ocr:      ocr,
	}, nil
}

// Embedder returns the image embedding service.
func (p *Provider) Embedder() vision.Embedder {
	return p.embedder
}

// OCR returns the text recognition service.
func (p *Provider) OCR() vision.OCRProducer {
	return p.ocr
}

// Close releases resources held by the provider's services.
func (p *Provider) Close() error {
	return p.ocr.Close()
}
