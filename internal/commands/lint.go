package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/playlint/playlint/internal/governor"
	"github.com/playlint/playlint/internal/guard"
	"github.com/playlint/playlint/internal/invoker"
	"github.com/playlint/playlint/internal/profile"
	"github.com/playlint/playlint/models"
)

var lintProfile string

var lintCmd = &cobra.Command{
	Use:   "lint <playbook>",
	Short: "Lint a local playbook file",
	Long: `Run ansible-lint on a local playbook through the same guard and
invocation pipeline the servers use.

Exit codes: 0 = no violations, 2 = violations found, 1 = error.`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

var validateCmd = &cobra.Command{
	Use:   "validate <playbook>",
	Short: "Check a local playbook's size and YAML syntax",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List supported lint profiles",
	Run: func(cmd *cobra.Command, args []string) {
		reg := profile.NewRegistry()
		for _, p := range reg.List() {
			marker := " "
			if p.Default {
				marker = "*"
			}
			fmt.Printf("%s %-12s %s\n", marker, p.Name, p.Description)
		}
	},
}

func init() {
	lintCmd.Flags().StringVar(&lintProfile, "profile", "", "lint profile (default: basic)")
}

func runLint(cmd *cobra.Command, args []string) error {
	content, prof, err := loadPlaybook(args[0], lintProfile)
	if err != nil {
		return err
	}

	gov := governor.New(cfg.Governor.Capacity, cfg.Lint.Timeout, cfg.Governor.Wait)
	inv := invoker.New(cfg.Lint.Command, cfg.Lint.Timeout)

	var result *models.LintResult
	runErr := gov.Run(cmd.Context(), func(runCtx context.Context) error {
		var invokeErr error
		result, invokeErr = inv.Invoke(runCtx, content, prof)
		return invokeErr
	})
	if runErr != nil && result == nil {
		return runErr
	}

	fmt.Print(result.Stdout)
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.Passed {
		fmt.Printf("✓ No violations (profile: %s)\n", prof.Name)
	} else {
		fmt.Printf("✗ %d issue(s) found (profile: %s, exit code: %d)\n",
			result.IssueCount, prof.Name, result.ExitCode)
	}

	os.Exit(result.ExitCode)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read playbook: %w", err)
	}

	g := guard.New(cfg.Lint.MaxUploadBytes)
	result := g.Validate(content)
	if !result.Valid {
		fmt.Printf("✗ %s\n", result.Error)
		os.Exit(1)
	}

	fmt.Printf("✓ Valid YAML (%d bytes)\n", result.SizeBytes)
	return nil
}

// loadPlaybook reads and guards a local playbook, resolving the profile.
func loadPlaybook(path, profileName string) ([]byte, models.Profile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, models.Profile{}, fmt.Errorf("failed to read playbook: %w", err)
	}

	g := guard.New(cfg.Lint.MaxUploadBytes)
	if v := g.Validate(content); !v.Valid {
		return nil, models.Profile{}, fmt.Errorf("invalid playbook: %s", v.Error)
	}

	reg := profile.NewRegistry()
	if profileName == "" {
		return content, reg.Default(), nil
	}
	prof, err := reg.Resolve(profileName)
	if err != nil {
		return nil, models.Profile{}, err
	}
	return content, prof, nil
}
