package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/search"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/core/validator"
	"github.com/spf13/cobra"
)

var (
	listSearch    string
	listOrder     string
	clientName    string
	clientSurname string
	clientLast    string
	clientContact []string
	deleteYes     bool
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client records",
	Long:  "List, inspect, add, update and delete client records in the configured store",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := search.ParseOrder(listOrder)
		if err != nil {
			return err
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		clients, err := services.ClientService.ListClients(cmd.Context(), service.ListOptions{
			Search: listSearch,
			Order:  order,
		})
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(clients) == 0 {
			fmt.Fprintln(out, "No clients found")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFULL NAME\tCONTACTS\tCREATED AT\tUPDATED AT")
		for _, client := range clients {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				client.ID,
				fullName(client),
				len(client.Contacts),
				client.CreatedAt,
				client.UpdatedAt,
			)
		}
		return w.Flush()
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show <client-id>",
	Short: "Show a client with its contacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientService.GetClient(cmd.Context(), args[0])
		if err != nil {
			return describeError(err, args[0])
		}

		printClient(cmd.OutOrStdout(), client)
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new client",
	Example: `  clientbook clients add --name Ann --surname Lee \
    --contact Email=ann@example.com --contact Telephone="+7 999 123 45 67"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		contacts, err := parseContacts(clientContact)
		if err != nil {
			return err
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientService.AddClient(cmd.Context(), domain.ClientFields{
			Name:     strings.TrimSpace(clientName),
			Surname:  strings.TrimSpace(clientSurname),
			LastName: strings.TrimSpace(clientLast),
			Contacts: contacts,
		})
		if err != nil {
			return describeError(err, "")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Client created successfully")
		printClient(cmd.OutOrStdout(), client)
		return nil
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <client-id>",
	Short: "Update a client",
	Long:  "Update the given fields of a client. Passing --contact replaces all contacts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := map[string]any{}
		flags := cmd.Flags()
		if flags.Changed("name") {
			raw["name"] = clientName
		}
		if flags.Changed("surname") {
			raw["surname"] = clientSurname
		}
		if flags.Changed("last-name") {
			raw["lastName"] = clientLast
		}
		if flags.Changed("contact") {
			contacts, err := parseContacts(clientContact)
			if err != nil {
				return err
			}
			items := make([]any, len(contacts))
			for i, c := range contacts {
				items[i] = map[string]any{"type": c.Type, "value": c.Value}
			}
			raw["contacts"] = items
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientService.UpdateClient(cmd.Context(), args[0], raw)
		if err != nil {
			return describeError(err, args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Client '%s' updated successfully\n", client.ID)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := args[0]
		out := cmd.OutOrStdout()

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		// Confirm deletion
		if !deleteYes {
			fmt.Fprintf(out, "Are you sure you want to delete client '%s'? (yes/no): ", clientID)
			confirm, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
		}

		if err := services.ClientService.DeleteClient(cmd.Context(), clientID); err != nil {
			return describeError(err, clientID)
		}

		fmt.Fprintf(out, "Client '%s' deleted successfully\n", clientID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsShowCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	clientsListCmd.Flags().StringVar(&listSearch, "search", "", "only clients whose names or contact values contain this text")
	clientsListCmd.Flags().StringVar(&listOrder, "order", "", "sort order, e.g. fio|asc,createdAt|desc (fields: "+strings.Join(search.OrderFields(), ", ")+")")

	for _, c := range []*cobra.Command{clientsAddCmd, clientsUpdateCmd} {
		c.Flags().StringVar(&clientName, "name", "", "first name")
		c.Flags().StringVar(&clientSurname, "surname", "", "surname")
		c.Flags().StringVar(&clientLast, "last-name", "", "last name")
		c.Flags().StringArrayVar(&clientContact, "contact", nil, "contact as type=value, repeatable")
	}

	clientsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking for confirmation")
}

// parseContacts turns type=value pairs into contacts
func parseContacts(pairs []string) ([]domain.Contact, error) {
	contacts := make([]domain.Contact, 0, len(pairs))
	for _, pair := range pairs {
		typ, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid contact %q, expected type=value", pair)
		}
		contacts = append(contacts, domain.Contact{
			Type:  strings.TrimSpace(typ),
			Value: strings.TrimSpace(value),
		})
	}
	return contacts, nil
}

// describeError turns expected failures into messages fit for a terminal
func describeError(err error, clientID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("client not found: %s", clientID)
	}

	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		messages := make([]string, len(validationErr.Errors))
		for i, fe := range validationErr.Errors {
			messages[i] = fe.Message
		}
		return errors.New(strings.Join(messages, "; "))
	}

	return err
}

func fullName(client *domain.Client) string {
	return strings.Join(strings.Fields(client.Surname+" "+client.Name+" "+client.LastName), " ")
}

func printClient(out io.Writer, client *domain.Client) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", client.ID)
	fmt.Fprintf(w, "Full name:\t%s\n", fullName(client))
	fmt.Fprintf(w, "Created at:\t%s\n", client.CreatedAt)
	fmt.Fprintf(w, "Updated at:\t%s\n", client.UpdatedAt)
	for _, contact := range client.Contacts {
		fmt.Fprintf(w, "%s:\t%s\n", contact.Type, contact.Value)
	}
	w.Flush()
}
