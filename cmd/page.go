package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	content "github.com/pirouette/content"
)

func init() {
	rootCmd.AddCommand(getPageCmd())
	rootCmd.AddCommand(savePageCmd())
	rootCmd.AddCommand(deletePageCmd())
	rootCmd.AddCommand(listPageVersionsCmd())
	rootCmd.AddCommand(restorePageCmd())
}

func getPageCmd() *cobra.Command {
	var slug string
	var clientID string

	var required = []string{"slug"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a page document",
		Example: "content get -s <slug> -c <client-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if clientID == "" {
				clientID = defaultClientID()
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			page, err := client.GetPage(context.Background(), slug, clientID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Slug", "Client", "Version", "Exists"})
			table.Append([]string{page.Slug, page.ClientID, strconv.FormatInt(page.Version, 10), strconv.FormatBool(page.Exists)})
			table.Render()

			data, err := json.MarshalIndent(page.Data, "", "  ")
			if err != nil {
				logrus.Error(err)
				return
			}
			printField("Data", string(data))
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "page slug (required)")
	command.Flags().StringVarP(&clientID, "client-id", "c", "", "client id")

	command.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	command.Flags().SortFlags = false

	return command
}

func savePageCmd() *cobra.Command {
	var slug string
	var clientID string
	var file string
	var updatedBy string
	var comment string

	var required = []string{"slug", "file"}

	command := &cobra.Command{
		Use:     "save",
		Short:   "save a page document",
		Long:    `save a page document from a json file, replacing the current content`,
		Example: "content save -s <slug> -c <client-id> -f <data.json>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if clientID == "" {
				clientID = defaultClientID()
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			var data map[string]interface{}
			if err := json.Unmarshal(raw, &data); err != nil {
				logrus.Error("invalid json file: ", err)
				return
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			page, err := client.SavePage(context.Background(), slug, clientID, data, updatedBy, comment)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("page %s saved at version %d", page.Slug, page.Version)
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "page slug (required)")
	command.Flags().StringVarP(&clientID, "client-id", "c", "", "client id")
	command.Flags().StringVarP(&file, "file", "f", "", "json file with page data (required)")
	command.Flags().StringVarP(&updatedBy, "author", "a", "", "author of the change")
	command.Flags().StringVarP(&comment, "comment", "m", "", "change comment")

	command.Flags().SortFlags = false

	return command
}

func deletePageCmd() *cobra.Command {
	var slug string
	var clientID string

	var required = []string{"slug"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a page document and its history",
		Example: "content delete -s <slug> -c <client-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if clientID == "" {
				clientID = defaultClientID()
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			if err := client.DeletePage(context.Background(), slug, clientID); err != nil {
				logrus.Error(err)
				return
			}

			color.Green("page deleted")
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "page slug (required)")
	command.Flags().StringVarP(&clientID, "client-id", "c", "", "client id")
	command.Flags().SortFlags = false

	return command
}

func listPageVersionsCmd() *cobra.Command {
	var slug string
	var clientID string

	var required = []string{"slug"}

	command := &cobra.Command{
		Use:   "versions",
		Short: "list page versions",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if clientID == "" {
				clientID = defaultClientID()
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			versions, err := client.ListPageVersions(context.Background(), slug, clientID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Created At", "Author", "Comment"})
			for _, v := range versions {
				version := strconv.FormatInt(v.Version, 10)
				if v.Current {
					table.Append([]string{version + " (current)", v.CreatedAt.Format("2006-01-02 15:04:05"), v.UpdatedBy, v.Comment})
				} else {
					table.Append([]string{fmt.Sprintf("%-11s", version), v.CreatedAt.Format("2006-01-02 15:04:05"), v.UpdatedBy, v.Comment})
				}
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "page slug (required)")
	command.Flags().StringVarP(&clientID, "client-id", "c", "", "client id")

	return command
}

func restorePageCmd() *cobra.Command {
	var slug string
	var clientID string
	var version int64

	var required = []string{"slug", "version"}

	command := &cobra.Command{
		Use:     "restore",
		Short:   "restore a page to an earlier version",
		Example: "content restore -s <slug> -v <version>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}
			if clientID == "" {
				clientID = defaultClientID()
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			page, err := client.RestorePageVersion(context.Background(), slug, clientID, version)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Slug", "Version"})
			table.Append([]string{page.Slug, strconv.FormatInt(page.Version, 10)})
			table.Render()
		},
	}

	command.Flags().StringVarP(&slug, "slug", "s", "", "page slug (required)")
	command.Flags().StringVarP(&clientID, "client-id", "c", "", "client id")
	command.Flags().Int64VarP(&version, "version", "v", -1, "version to restore (required)")
	command.Flags().SortFlags = false

	return command
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
