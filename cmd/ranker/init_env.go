package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shpitdev/fdi-ranker/internal/config"
)

func newInitEnvCmd(env cliEnv) *cobra.Command {
	var (
		path     string
		provider string
		apiKey   string
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "init-env",
		Short: "Write a .env file holding the provider API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider = strings.ToLower(strings.TrimSpace(provider))
			if provider != config.ProviderOpenAI && provider != config.ProviderGemini {
				return &configError{err: fmt.Errorf("unsupported provider %q", provider)}
			}
			if err := config.WriteEnvTemplate(path, provider, apiKey, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s; set %s before running\n", path, config.CredentialEnvVar(provider))
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", ".env", "Where to write the file")
	cmd.Flags().StringVar(&provider, "provider", config.ProviderOpenAI, "openai or gemini")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Key to store, placeholder when empty")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
