// Package httpapi exposes the recognition boundary over HTTP using gin.
//
// Routes:
//
//	POST /v1/recognize   multipart "image" file or JSON {image_base64}
//	GET  /v1/catalog     curated entries, localized by ?language=
//	GET  /v1/collections/:userId
//	GET  /healthz
package httpapi
