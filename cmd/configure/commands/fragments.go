package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arka-labs/strategist-api/internal/config"
	"github.com/arka-labs/strategist-api/internal/database"
	"github.com/arka-labs/strategist-api/internal/models"
)

// NewFragmentsCmd creates the prompt fragment management command.
// Fragments live in the database; built-in defaults apply for any
// fragment without a stored override.
func NewFragmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragments",
		Short: "Manage prompt fragments",
		Long:  "List, show, set or import the prompt fragments the chat pipeline composes system prompts from.",
	}
	cmd.AddCommand(newFragmentsListCmd())
	cmd.AddCommand(newFragmentsShowCmd())
	cmd.AddCommand(newFragmentsSetCmd())
	cmd.AddCommand(newFragmentsImportCmd())
	return cmd
}

func newFragmentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored prompt fragment overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := fragmentRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			fragments, err := repo.List(context.Background())
			if err != nil {
				return fmt.Errorf("list fragments: %w", err)
			}

			stored := make(map[models.FragmentName]*models.PromptFragment, len(fragments))
			for _, f := range fragments {
				stored[f.Name] = f
			}

			fmt.Println("Prompt fragments:")
			for _, name := range models.FragmentNames {
				if f, ok := stored[name]; ok {
					fmt.Printf("  - %s: stored override (%d chars, updated %s)\n",
						name, len(f.Content), f.UpdatedAt.Format("2006-01-02 15:04:05"))
				} else {
					fmt.Printf("  - %s: built-in default\n", name)
				}
			}
			return nil
		},
	}
}

func newFragmentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored prompt fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := models.FragmentName(args[0])
			if !name.IsValid() {
				return fmt.Errorf("unknown fragment %q (known: %s)", args[0], knownFragmentNames())
			}

			repo, closeDB, err := fragmentRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			fragment, err := repo.Get(context.Background(), name)
			if err != nil {
				return fmt.Errorf("get fragment: %w", err)
			}
			if fragment == nil {
				fmt.Printf("No stored override for %s; the built-in default applies.\n", name)
				return nil
			}

			fmt.Println(fragment.Content)
			return nil
		},
	}
}

func newFragmentsSetCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Set a prompt fragment from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := models.FragmentName(args[0])
			if !name.IsValid() {
				return fmt.Errorf("unknown fragment %q (known: %s)", args[0], knownFragmentNames())
			}
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read fragment file: %w", err)
			}
			text := strings.TrimSpace(string(content))
			if text == "" {
				return fmt.Errorf("fragment file is empty")
			}

			repo, closeDB, err := fragmentRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Upsert(context.Background(), &models.PromptFragment{
				Name:    name,
				Content: text,
			}); err != nil {
				return fmt.Errorf("store fragment: %w", err)
			}

			fmt.Printf("Fragment %s updated (%d chars).\n", name, len(text))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a file containing the fragment text (required)")
	return cmd
}

func newFragmentsImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import prompt fragments from a YAML file",
		Long:  "Import multiple fragments at once from a YAML mapping of fragment name to content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			var fragments map[string]string
			if err := yaml.Unmarshal(data, &fragments); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}
			if len(fragments) == 0 {
				return fmt.Errorf("import file contains no fragments")
			}

			repo, closeDB, err := fragmentRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := context.Background()
			imported := 0
			for rawName, content := range fragments {
				name := models.FragmentName(rawName)
				if !name.IsValid() {
					return fmt.Errorf("unknown fragment %q (known: %s)", rawName, knownFragmentNames())
				}
				text := strings.TrimSpace(content)
				if text == "" {
					return fmt.Errorf("fragment %q is empty", rawName)
				}
				if err := repo.Upsert(ctx, &models.PromptFragment{Name: name, Content: text}); err != nil {
					return fmt.Errorf("store fragment %q: %w", rawName, err)
				}
				imported++
			}

			fmt.Printf("Imported %d fragments.\n", imported)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a YAML file mapping fragment names to content (required)")
	return cmd
}

func fragmentRepo() (*database.FragmentRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return database.NewFragmentRepository(db), closeDB, nil
}

func knownFragmentNames() string {
	names := make([]string, len(models.FragmentNames))
	for i, n := range models.FragmentNames {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}
