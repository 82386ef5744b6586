// Package evidence implements the LLM-backed evidence sources.
//
// VisionSource sends the photograph to a vision-capable model; TextSource
// sends scraped web text. Both render prompts from a driven.PromptStore
// and decode replies with ParseReply, which tolerates markdown fences and
// surrounding prose. Neither source ever returns an error: any failure
// is logged and reported as negative evidence.
package evidence
