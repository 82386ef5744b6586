package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Show saved recognitions",
	RunE:  runCollectionList,
}

func init() {
	collectionCmd.Flags().StringP("user", "u", defaultCLIUser, "collection owner")
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}
	user, _ := cmd.Flags().GetString("user")

	items, err := collectionService.List(cmd.Context(), user)
	if err != nil {
		return fmt.Errorf("list collection: %w", err)
	}
	if len(items) == 0 {
		cmd.Println("No saved recognitions.")
		return nil
	}

	for _, item := range items {
		kind := "custom"
		if item.IsLinked() {
			kind = "catalog " + *item.CatalogEntryID
		}
		cmd.Printf("%s  %s  %s (%s)\n",
			item.CreatedAt.Local().Format("2006-01-02 15:04"), item.ID, item.Snapshot.Title, kind)
	}
	return nil
}
