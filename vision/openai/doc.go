// Package openai implements the vision interfaces against OpenAI-compatible
// HTTP APIs. The embedder talks to a CLIP-style embedding server that
// accepts base64 image payloads; the OCR producer prompts a multimodal chat
// model to transcribe visible text. Both work with local servers (Ollama,
// Infinity, vLLM) as well as hosted endpoints.
package openai
