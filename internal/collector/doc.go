// Package collector gathers readable text from the web pages a
// reverse-image search found for a photograph.
//
// Candidate URLs are ranked trusted-first, fetched concurrently with
// settled semantics and reduced to plain text. When the combined text is
// too thin, the top-ranked page is rendered once in a headless browser.
package collector
