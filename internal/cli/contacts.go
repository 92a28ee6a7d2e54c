// contacts.go implements "contacts list" and "contacts add".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List or add contacts",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your most contacted numbers",
	Args:  cobra.NoArgs,
	RunE:  runContactsList,
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <first name> <phone>",
	Short: "Save a contact",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactsAdd,
}

var contactLastNameFlag string

func init() {
	contactsAddCmd.Flags().StringVar(&contactLastNameFlag, "last-name", "", "Last name")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsAddCmd)
}

func runContactsList(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ticket, err := e.open(controller.ViewContacts)
	if err != nil {
		return err
	}
	data, err := e.ctrl.Load(cmd.Context(), ticket)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), views.RenderContacts(data.Contacts))
	return nil
}

func runContactsAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.open(controller.ViewContacts); err != nil {
		return err
	}
	c, err := e.ctrl.API().AddContact(cmd.Context(), api.NewContact{
		FirstName:   args[0],
		LastName:    contactLastNameFlag,
		PhoneNumber: args[1],
	})
	if err != nil {
		return err
	}

	name := c.FullName
	if name == "" {
		name = c.FirstName
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added contact %s (%s)\n", name, c.PhoneNumber)
	if c.SpamLikelihood > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: this number has %d spam report(s)\n", c.SpamLikelihood)
	}
	return nil
}
