package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artid/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/artid/internal/core/domain"
)

// defaultCLIUser is charged for quota when --user is not given.
const defaultCLIUser = "local"

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Identify the artwork in a photograph",
	Long: `Identify the artwork or monument shown in a photograph.

Examples:
  artid recognize photo.jpg
  artid recognize photo.jpg --lang it --save
  artid recognize photo.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	recognizeCmd.Flags().StringP("lang", "l", "en", "language for the answer")
	recognizeCmd.Flags().StringP("user", "u", defaultCLIUser, "user charged for quota and owning saved items")
	recognizeCmd.Flags().Bool("save", false, "save the result to the user's collection")
	recognizeCmd.Flags().Bool("json", false, "print the raw JSON response")
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	svc, err := requireRecognition()
	if err != nil {
		return err
	}

	lang, _ := cmd.Flags().GetString("lang")
	user, _ := cmd.Flags().GetString("user")
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	resp, err := svc.Recognize(cmd.Context(), domain.RecognitionRequest{
		UserID:           user,
		Image:            domain.Image{Data: data, MIMEType: http.DetectContentType(data)},
		Language:         lang,
		SaveToCollection: save,
	})
	if err != nil {
		return fmt.Errorf("recognize: %w", err)
	}

	if asJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(renderResponse(styles.NewStyles(nil), resp, save))
	return nil
}

// renderResponse formats a recognition response as a styled card.
// A requested save that did not happen is shown as a warning.
func renderResponse(st *styles.Styles, resp *domain.RecognitionResponse, saveRequested bool) string {
	if !resp.Identified || resp.Artwork == nil {
		return st.Error.Render("Not identified") + "\n" + st.Muted.Render(resp.Message)
	}

	a := resp.Artwork
	title := a.Title
	if title == "" {
		title = "Untitled"
	}

	lines := []string{st.Title.Render(title)}
	for _, f := range [][2]string{
		{"Artist", a.Artist},
		{"Year", a.Year},
		{"Period", a.Period},
		{"Technique", a.Technique},
		{"Dimensions", a.Dimensions},
		{"Country", a.Country},
		{"Category", a.Category},
		{"Confidence", fmt.Sprintf("%.0f%%", a.Confidence*100)},
		{"Stage", a.Stage.String()},
		{"Catalog", a.CatalogEntryID},
		{"Tags", strings.Join(a.Tags, ", ")},
	} {
		if line := st.Field(f[0], f[1]); line != "" {
			lines = append(lines, line)
		}
	}
	if a.Description != "" {
		lines = append(lines, "", a.Description)
	}

	status := st.Success.Render(resp.Message)
	if saveRequested && !resp.SavedToCollection {
		status = st.Warning.Render(resp.Message)
	}

	return st.Card.Render(strings.Join(lines, "\n")) + "\n" + status
}
