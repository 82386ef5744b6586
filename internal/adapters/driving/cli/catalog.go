package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artid/internal/core/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the curated artwork catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import catalog entries from a JSON file",
	Long: `Import catalog entries from a JSON file.

The file holds either an array of entries or an object with an "entries"
array. Entries with an existing ID are replaced.

  [
    {
      "id": "mona-lisa",
      "title": "Mona Lisa",
      "artistName": "Leonardo da Vinci",
      "category": "renaissance",
      "translations": {"it": {"title": "La Gioconda"}}
    }
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	RunE:  runCatalogList,
}

var catalogMatchCmd = &cobra.Command{
	Use:   "match <title> [artist]",
	Short: "Find the catalog entry matching a title and artist",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCatalogMatch,
}

func init() {
	catalogListCmd.Flags().StringP("lang", "l", "en", "language for localized titles")
	catalogMatchCmd.Flags().StringP("lang", "l", "en", "language of the given title and artist")
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogMatchCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	entries, err := decodeEntries(data)
	if err != nil {
		return err
	}

	n, err := catalogService.Import(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	cmd.Printf("Imported %d catalog entries\n", n)
	return nil
}

// decodeEntries accepts a bare array or an {"entries": [...]} object.
func decodeEntries(data []byte) ([]domain.CatalogEntry, error) {
	data = bytes.TrimSpace(data)
	var entries []domain.CatalogEntry
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse catalog file: %w", err)
		}
		return entries, nil
	}

	var wrapped struct {
		Entries []domain.CatalogEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return wrapped.Entries, nil
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	lang, _ := cmd.Flags().GetString("lang")

	entries, err := catalogService.List(cmd.Context(), lang)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("Catalog is empty. Run 'artid catalog import <file.json>' to add entries.")
		return nil
	}

	for _, e := range entries {
		title, artist := e.Localized(lang)
		line := fmt.Sprintf("%-24s %s", e.ID, title)
		if artist != "" {
			line += " - " + artist
		}
		if e.Category != "" {
			line += " [" + e.Category + "]"
		}
		cmd.Println(line)
	}
	cmd.Printf("\n%d entries\n", len(entries))
	return nil
}

func runCatalogMatch(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	lang, _ := cmd.Flags().GetString("lang")

	artist := ""
	if len(args) > 1 {
		artist = args[1]
	}

	entry, err := catalogService.Match(cmd.Context(), args[0], artist, lang)
	if err != nil {
		return fmt.Errorf("match catalog: %w", err)
	}
	if entry == nil {
		cmd.Println("No catalog match")
		return nil
	}

	title, name := entry.Localized(lang)
	cmd.Printf("Matched %s: %s", entry.ID, title)
	if name != "" {
		cmd.Printf(" - %s", name)
	}
	cmd.Println()
	return nil
}
