// Package matching reconciles an identification against the curated
// catalog with a normalized, two-stage fuzzy comparison: titles first,
// then artists among the title survivors.
package matching
