package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockrest/pkg/config"
	"github.com/getmockd/mockrest/pkg/openapi"
	"github.com/getmockd/mockrest/pkg/resources"
)

func newOpenAPICmd() *cobra.Command {
	var (
		outFile   string
		prefix    string
		serverURL string
		compact   bool
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI 3 document describing the API",
		Example: `  mockrest openapi > openapi.json
  mockrest openapi --output openapi.json --server-url http://localhost:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := openapi.Build(resources.Definitions(), openapi.Options{
				Version:   Version,
				Prefix:    (&config.ServerConfiguration{Prefix: prefix}).NormalizedPrefix(),
				ServerURL: serverURL,
			})
			if err != nil {
				return err
			}
			data, err := openapi.Marshal(doc, !compact)
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outFile, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&prefix, "prefix", config.DefaultPrefix, "Path prefix for resource routes")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "Server URL listed in the document")
	cmd.Flags().BoolVar(&compact, "compact", false, "Write compact JSON")
	return cmd
}
