package openai

// noTextSentinel is what the model is told to answer when an image carries
// no readable text.
const noTextSentinel = "NO_TEXT"

// quickOCRPrompt trades accuracy for latency: a single pass over the most
// prominent text.
const quickOCRPrompt = `Transcribe the text visible in this image.
Reply with only the transcribed text, preserving reading order.
If the image contains no readable text, reply with exactly: NO_TEXT`

// thoroughOCRPrompt asks for an exhaustive transcription, including small
// or partially obscured text.
const thoroughOCRPrompt = `Carefully transcribe ALL text visible in this image,
including small print, captions, labels, watermarks and partially obscured
words. Preserve reading order. Reply with only the transcribed text.
If the image contains no readable text, reply with exactly: NO_TEXT`

// Mode-level confidence assigned to transcriptions. Chat models report no
// per-word confidence, so the producer attributes a flat confidence based
// on the effort level.
const (
	quickConfidence    = 0.7
	thoroughConfidence = 0.85
)
