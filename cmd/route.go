package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	content "github.com/pirouette/content"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "manage file-backed route content",
	Example: `  content route save -f <schema.json>
  content route load -r <route>
  content route versions -r <route>`,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	routeCmd.AddCommand(saveRouteCmd())
	routeCmd.AddCommand(loadRouteCmd())
	routeCmd.AddCommand(listRouteVersionsCmd())
}

func saveRouteCmd() *cobra.Command {
	var file string
	var author string
	var comment string

	var required = []string{"file"}

	command := &cobra.Command{
		Use:     "save",
		Short:   "save route content from a json file",
		Example: "content route save -f <schema.json> -a <author>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				logrus.Error(err)
				return
			}

			var schema map[string]interface{}
			if err := json.Unmarshal(raw, &schema); err != nil {
				logrus.Error("invalid json file: ", err)
				return
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			version, err := client.SaveContent(context.Background(), schema, author, comment)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("content saved at version %d", version)
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "json file with the route schema (required)")
	command.Flags().StringVarP(&author, "author", "a", "", "author of the change")
	command.Flags().StringVarP(&comment, "comment", "m", "", "change comment")
	command.Flags().SortFlags = false

	return command
}

func loadRouteCmd() *cobra.Command {
	var route string

	var required = []string{"route"}

	command := &cobra.Command{
		Use:     "load",
		Short:   "load route content",
		Example: "content route load -r <route>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			schema, err := client.LoadContent(context.Background(), route)
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				logrus.Error(err)
				return
			}
			printField("Schema", string(data))
		},
	}

	command.Flags().StringVarP(&route, "route", "r", "", "route name (required)")

	return command
}

func listRouteVersionsCmd() *cobra.Command {
	var route string

	var required = []string{"route"}

	command := &cobra.Command{
		Use:   "versions",
		Short: "list route content versions",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client, err := content.NewClient(serverURL())
			if err != nil {
				logrus.Error(err)
				return
			}
			defer client.Close()

			versions, err := client.ListContentVersions(context.Background(), route)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Timestamp", "Author", "Comment"})
			for _, v := range versions {
				table.Append([]string{strconv.FormatInt(v.Version, 10), v.Timestamp.Format("2006-01-02 15:04:05"), v.Author, v.Comment})
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&route, "route", "r", "", "route name (required)")

	return command
}
