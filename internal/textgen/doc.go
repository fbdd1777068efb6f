// Package textgen produces quiz records for a word by asking a generative
// text service for a strict JSON question. Gemini and OpenAI back-ends are
// provided; both share the same prompt and the same parse-then-validate
// step, so a response is either a complete valid record or an error.
package textgen
