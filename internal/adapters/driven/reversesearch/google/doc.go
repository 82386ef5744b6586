// Package google provides reverse-image search using the Google Cloud Vision
// API WEB_DETECTION feature.
//
// A single annotate call returns pages that embed the image, visually similar
// images, best-guess labels and weighted web entities. The client authenticates
// with either an API key or an OAuth2 bearer token and applies a client-side
// rate limit with backoff after 429 responses.
package google
