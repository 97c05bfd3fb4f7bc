// Package provider adapts the Eino chat model implementations behind a
// small streaming interface so the exchange loop can consume Anthropic
// and OpenAI models uniformly.
package provider
