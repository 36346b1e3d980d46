package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// NewSeedCmd loads reference data.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data such as the client roster",
	}

	var file string
	clients := &cobra.Command{
		Use:   "clients",
		Short: "Create or update clients from a YAML roster",
		Example: `  mrm seed clients --file clients.yaml

  # clients.yaml
  clients:
    - client_id: C001
      name: Asha Rao
      category: Composer
      fee: 0.10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open roster file")
			}
			defer f.Close()

			roster, err := ParseRoster(f)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, cliCtx *CLIContext, b *Backend) error {
				saved := make([]*client.Client, 0, len(roster))
				for _, c := range roster {
					out, err := b.Clients.Save(ctx, c)
					if err != nil {
						return err
					}
					saved = append(saved, out)
				}
				cliCtx.Logger.Info("client roster seeded", logging.String("file", file), logging.Int("count", len(saved)))
				return PrintResult(cmd, clientTable(saved))
			})
		},
	}
	clients.Flags().StringVarP(&file, "file", "f", "", "YAML roster (required)")
	_ = clients.MarkFlagRequired("file")

	cmd.AddCommand(clients)
	return cmd
}

// ParseRoster reads clients from YAML, either a bare list or a document with
// a top-level "clients" list. Clients without is_active are active. Every
// client is normalized and validated before anything is returned.
func ParseRoster(r io.Reader) ([]*client.Client, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.NewValidationError("roster file is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to parse roster")
	}

	list := &doc
	if list.Kind == yaml.DocumentNode && len(list.Content) == 1 {
		list = list.Content[0]
	}
	if list.Kind == yaml.MappingNode {
		list = mappingValue(list, "clients")
		if list == nil {
			return nil, errors.NewValidationError("roster has no clients list")
		}
	}
	if list.Kind != yaml.SequenceNode {
		return nil, errors.NewValidationError("roster must be a list of clients")
	}

	out := make([]*client.Client, 0, len(list.Content))
	seen := make(map[string]bool, len(list.Content))
	for _, item := range list.Content {
		c := &client.Client{}
		if err := item.Decode(c); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to decode roster entry").
				WithDetail(fmt.Sprintf("line %d", item.Line))
		}
		if mappingValue(item, "is_active") == nil {
			c.IsActive = true
		}
		c.Normalize()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ClientID] {
			return nil, errors.Newf(errors.ErrCodeValidation, "client %s appears twice in roster", c.ClientID)
		}
		seen[c.ClientID] = true
		out = append(out, c)
	}
	return out, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

//Personal.AI order the ending
