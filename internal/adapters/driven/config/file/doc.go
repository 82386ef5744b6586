// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage, watchable with fsnotify
//   - PromptStore: user-editable LLM prompt templates
package file
