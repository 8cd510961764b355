package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfrund/dungeonwave/cmd/dungeonwave/internal/display"
	"github.com/nfrund/dungeonwave/internal/modules/dungeon/topics"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

func newTopicsCmd() *cobra.Command {
	topicsCmd := &cobra.Command{
		Use:   "topics",
		Short: "Explore the event topics the server publishes",
		Long: `The topics command lists and validates the bus topics declared by the
server modules. Match events travel on these topics before they are fanned
out to websocket clients.

Examples:
  # List all topics
  dungeonwave topics list

  # List topics of one module as JSON
  dungeonwave topics list --module=dungeon --format=json

  # Validate a topic
  dungeonwave topics validate dungeon.match.event`,
	}
	topicsCmd.AddCommand(newTopicsListCmd(), newTopicsValidateCmd())
	return topicsCmd
}

// loadTopics registers every module topic into a fresh manager.
func loadTopics() (*topicmgr.Manager, error) {
	mgr := topicmgr.NewManager()
	if err := topics.Register(mgr); err != nil {
		return nil, fmt.Errorf("failed to initialize topics: %w", err)
	}
	return mgr, nil
}

func newTopicsListCmd() *cobra.Command {
	var format, module, scope string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all registered topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadTopics()
			if err != nil {
				return err
			}

			topicList := mgr.List()
			if module != "" {
				topicList = mgr.ListByModule(module)
			}
			if scope != "" {
				want := parseScope(scope)
				if want == "" {
					return fmt.Errorf("invalid scope '%s'. Valid scopes: framework, module", scope)
				}
				filtered := topicList[:0:0]
				for _, t := range topicList {
					if t.Scope() == want {
						filtered = append(filtered, t)
					}
				}
				topicList = filtered
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return display.TopicsJSON(out, topicList)
			case "table":
				if len(topicList) == 0 {
					fmt.Fprintln(out, "No topics found")
					return nil
				}
				display.TopicsTable(out, topicList)
				return nil
			default:
				return fmt.Errorf("unsupported output format '%s'. Use 'table' or 'json'", format)
			}
		},
	}
	listCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	listCmd.Flags().StringVarP(&module, "module", "m", "", "Filter topics by module name")
	listCmd.Flags().StringVarP(&scope, "scope", "s", "", "Filter topics by scope (framework, module)")
	return listCmd
}

func newTopicsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <topic-name>",
		Short: "Validate a topic definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadTopics()
			if err != nil {
				return err
			}
			v := topicmgr.NewValidator()
			nameErr := v.ValidateName(args[0])
			topic, found := mgr.Get(args[0])
			var defErr error
			if found {
				defErr = v.ValidateDefinition(topic)
			} else if nameErr == nil {
				defErr = fmt.Errorf("topic %q is not registered", args[0])
			}

			display.Validation(cmd.OutOrStdout(), topic, nameErr, defErr)
			if nameErr != nil || defErr != nil {
				return fmt.Errorf("topic %q is invalid", args[0])
			}
			return nil
		},
	}
}

// parseScope converts string scope to topicmgr.TopicScope
func parseScope(scopeStr string) topicmgr.TopicScope {
	switch strings.ToLower(scopeStr) {
	case "framework":
		return topicmgr.ScopeFramework
	case "module":
		return topicmgr.ScopeModule
	default:
		return ""
	}
}
