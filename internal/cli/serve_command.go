package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/scout/internal/commands"
	"github.com/temirov/scout/internal/services/server"
)

const (
	addressFlagName       = "address"
	defaultServeAddress   = "127.0.0.1:8765"
	serveUse              = "serve"
	serveShortDescription = "serve questions and probes over HTTP"
	serveLongDescription  = `Start an HTTP server for the repository in the current directory.
POST /ask answers {"question": "..."}, POST /tree and POST /show run single probes on {"path": "..."}
and GET /capabilities lists the endpoints. The server stops on interrupt.`
	serveUsageExample = `  # Serve on the default address
  scout serve

  # Serve on all interfaces
  scout serve --address 0.0.0.0:8765`

	serveListeningFormat = "scout listening on http://%s\n"
)

func createServeCommand(app *application) *cobra.Command {
	var (
		address string
		paths   pathOptions
	)

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Short:   serveShortDescription,
		Long:    serveLongDescription,
		Example: serveUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			interpreter := commands.NewInterpreter(paths.interpreterOptions(command, app.configuration, app.logger))
			controller, controllerError := app.newController(interpreter)
			if controllerError != nil {
				return controllerError
			}
			httpServer := server.NewServer(server.Config{
				Address: address,
				Asker:   controller,
				Prober:  interpreter,
				Logger:  app.logger,
			})
			return httpServer.Run(command.Context(), func(boundAddress string) {
				fmt.Fprintf(app.dependencies.Output, serveListeningFormat, boundAddress)
			})
		},
	}

	serveCommand.Flags().StringVar(&address, addressFlagName, defaultServeAddress, "listen address")
	paths.register(serveCommand)
	return serveCommand
}
