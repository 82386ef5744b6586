// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The identification pipeline, catalog reconciliation and the recognition
// boundary live here. Services never import adapters directly.
package services
