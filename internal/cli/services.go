package cli

import (
	"github.com/spf13/cobra"
)

// servicesCommand creates the services command group for managing named
// service profiles.
func (c *CLI) servicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage named service profiles",
		Long: `Manage named service profiles.

Profiles map a short name to a service root URL so other commands can take
the name instead of the full URL:

  odex services add northwind https://services.odata.org/V4/Northwind/Northwind.svc
  odex inspect northwind

Profiles are stored in ` + profilesFile + ` under the config directory.`,
	}

	cmd.AddCommand(c.servicesListCommand())
	cmd.AddCommand(c.servicesAddCommand())
	cmd.AddCommand(c.servicesRemoveCommand())

	return cmd
}

func (c *CLI) servicesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServicesList()
		},
	}
}

func (c *CLI) servicesAddCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add [name] [url]",
		Short: "Save a service profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServicesAdd(args[0], args[1], label)
		},
	}
	cmd.Flags().StringVar(&label, "name", "", "human-readable label for the service")

	return cmd
}

func (c *CLI) servicesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove [name]",
		Aliases: []string{"rm"},
		Short:   "Delete a service profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServicesRemove(args[0])
		},
	}
}

func (c *CLI) runServicesList() error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}

	if len(profiles.Services) == 0 {
		printInfo("No profiles saved yet")
		printNextStep("Add one", "odex services add [name] [url]")
		return nil
	}

	for _, name := range profiles.Names() {
		printKeyValue(name, profiles.Services[name].URL)
	}
	return nil
}

func (c *CLI) runServicesAdd(name, url, label string) error {
	if err := addProfile(name, url, label); err != nil {
		return err
	}
	printSuccess("Saved profile %s", name)
	printNextStep("Explore it", "odex inspect "+name)
	return nil
}

func (c *CLI) runServicesRemove(name string) error {
	if err := removeProfile(name); err != nil {
		return err
	}
	printSuccess("Removed profile %s", name)
	return nil
}
