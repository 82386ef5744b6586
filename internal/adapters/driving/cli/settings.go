package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM providers, reverse-image search credentials
and pipeline thresholds.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure an LLM provider",
	Long: `Configure the LLM provider for the vision role (photo identification)
or the text role (reading web pages). The text role falls back to the
vision provider when it is not configured.`,
	RunE: runSettingsLLM,
}

var settingsReverseSearchCmd = &cobra.Command{
	Use:   "reverse-search",
	Short: "Configure reverse-image search credentials",
	Long: `Configure Google Cloud Vision web detection, used when the vision model
is not confident. Provide an API key, or leave it empty to enter an OAuth2
access token instead.`,
	RunE: runSettingsReverseSearch,
}

var settingsThresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Set pipeline confidence thresholds",
	Long: `Set the confidence thresholds. Unset flags keep their current value.

  --high      vision results at or above this are accepted immediately
  --base      text analysis results must reach this
  --fallback  the final vision fallback must reach this
  --match     minimum title similarity for a catalog match`,
	RunE: runSettingsThresholds,
}

func init() {
	settingsLLMCmd.Flags().String("role", string(driving.LLMRoleVision), "LLM role to configure (vision or text)")

	settingsThresholdsCmd.Flags().Float64("high", 0, "high confidence threshold")
	settingsThresholdsCmd.Flags().Float64("base", 0, "base threshold")
	settingsThresholdsCmd.Flags().Float64("fallback", 0, "fallback threshold")
	settingsThresholdsCmd.Flags().Float64("match", 0, "catalog match threshold")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsReverseSearchCmd)
	settingsCmd.AddCommand(settingsThresholdsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printLLM(cmd, "[Vision LLM]", settings.VisionLLM)
	if settings.TextLLM.Provider == "" {
		cmd.Println("[Text LLM]")
		cmd.Println("  Using the vision LLM")
		cmd.Println()
	} else {
		printLLM(cmd, "[Text LLM]", settings.TextLLM)
	}

	rs := settings.ReverseSearch
	cmd.Println("[Reverse Search]")
	switch {
	case rs.APIKey != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(rs.APIKey))
	case rs.AccessToken != "":
		cmd.Printf("  Access Token: %s\n", maskAPIKey(rs.AccessToken))
	default:
		cmd.Println("  Status: not configured (vision evidence only)")
	}
	if rs.Endpoint != "" {
		cmd.Printf("  Endpoint: %s\n", rs.Endpoint)
	}
	cmd.Printf("  Max Results: %d\n", rs.MaxResults)
	cmd.Println()

	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  High Confidence: %.2f\n", p.HighConfidenceThreshold)
	cmd.Printf("  Base: %.2f\n", p.BaseThreshold)
	cmd.Printf("  Fallback: %.2f (%s)\n", p.FallbackThreshold, p.FallbackPolicy)
	cmd.Printf("  Catalog Match: %.2f\n", p.MatchThreshold)
	cmd.Printf("  Fetch Limit: %d pages\n", p.FetchLimit)
	cmd.Printf("  Headless Render: %t\n", p.RenderEnabled)
	cmd.Printf("  Chrome No Sandbox: %t\n", p.RenderNoSandbox)
	cmd.Println()

	cmd.Println("[Quota]")
	if settings.Quota.DailyLimit > 0 {
		cmd.Printf("  Daily Limit: %d (%s)\n", settings.Quota.DailyLimit, settings.Quota.Backend)
	} else {
		cmd.Println("  Daily Limit: disabled")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'artid settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printLLM(cmd *cobra.Command, header string, l domain.LLMSettings) {
	cmd.Println(header)
	cmd.Printf("  Provider: %s\n", l.Provider.Description())
	cmd.Printf("  Model: %s\n", l.Model)
	if l.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", l.BaseURL)
	}
	if l.Provider.RequiresAPIKey() {
		if l.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(l.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !l.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	roleFlag, _ := cmd.Flags().GetString("role")
	role := driving.LLMRole(roleFlag)
	if role != driving.LLMRoleVision && role != driving.LLMRoleText {
		return fmt.Errorf("unknown role %q (use vision or text)", roleFlag)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader, role)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader, role driving.LLMRole) error {
	cmd.Printf("Select %s LLM Provider\n", role)
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultVisionModels()
	if role == driving.LLMRoleText {
		defaults = domain.DefaultTextModels()
	}
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(role, selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(role); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("%s LLM configured: %s (%s)\n", role, selectedProvider.Description(), model)
	return nil
}

func runSettingsReverseSearch(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	cmd.Print("Enter Google Cloud API key (empty to use an access token): ")
	apiKey := readPassword(reader)
	cmd.Println()

	var token string
	if apiKey == "" {
		cmd.Print("Enter OAuth2 access token: ")
		token = readPassword(reader)
		cmd.Println()
	}

	if err := settingsService.SetReverseSearch(apiKey, token); err != nil {
		return fmt.Errorf("failed to configure reverse search: %w", err)
	}
	cmd.Println("Reverse search configured.")
	return nil
}

func runSettingsThresholds(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	p := settings.Pipeline

	values := map[string]*float64{
		"high":     &p.HighConfidenceThreshold,
		"base":     &p.BaseThreshold,
		"fallback": &p.FallbackThreshold,
		"match":    &p.MatchThreshold,
	}
	for name, target := range values {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*target = v
		}
	}

	if err := settingsService.SetThresholds(
		p.HighConfidenceThreshold, p.BaseThreshold, p.FallbackThreshold, p.MatchThreshold,
	); err != nil {
		return fmt.Errorf("failed to set thresholds: %w", err)
	}

	cmd.Printf("Thresholds: high %.2f, base %.2f, fallback %.2f, match %.2f\n",
		p.HighConfidenceThreshold, p.BaseThreshold, p.FallbackThreshold, p.MatchThreshold)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when stdin is a terminal,
// and falls back to a plain line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
