package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mongoose-kitchen/mongoose/internal/api"
	"github.com/mongoose-kitchen/mongoose/internal/cli/ui"
	"github.com/mongoose-kitchen/mongoose/internal/web/router"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the HTTP routes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			r := router.NewRouter()
			api.New(api.Config{}).Routes(r)

			table := ui.NewPrinter(cmd.OutOrStdout(), noColor(cmd)).Table("Method", "Pattern", "Name", "Parameters")
			for _, route := range r.GetRoutes() {
				params := make([]string, len(route.Parameters))
				for i, p := range route.Parameters {
					params[i] = p.Name + ":" + p.Type
				}
				table.AddRow(route.Method, route.Pattern, route.Name, strings.Join(params, ", "))
			}
			table.Render()
		},
	}
}
