// Package gemini provides an asset.Synthesizer backed by the Gemini
// text-to-speech models of Google's genai SDK.
//
// Gemini returns raw 16-bit PCM. The synthesizer wraps it into a WAV
// container so the stored assets can be played back directly by browsers.
// Transient API failures are retried with exponential backoff and jitter;
// blocked content and malformed responses fail immediately.
package gemini
