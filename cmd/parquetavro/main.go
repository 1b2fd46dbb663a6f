package main

import (
	"fmt"
	"os"
	"runtime"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/spf13/cobra"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/avroparquet"
	"github.com/mescobar2016/parquet-mr/pkg/logger"
)

var version = "0.1.0"

func main() {
	var logLevel string
	var oldListStructure bool
	var addListElementRecords bool

	root := &cobra.Command{
		Use:   "parquetavro",
		Short: "Avro/Parquet schema and record conversion tooling",
		Long: `parquetavro inspects the bidirectional mapping between Avro schemas and
Parquet message types: derive the physical layout an Avro schema writes to,
or the Avro schema a Parquet layout reads back as.`,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("parquetavro v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	schemaCmd := &cobra.Command{
		Use:   "schema <file.avsc>",
		Short: "Print the Parquet message type derived from an Avro schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Config{Level: logLevel})
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			doc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading schema file: %w", err)
			}
			avroSchema, err := avro.SchemaFromJSON(doc)
			if err != nil {
				return fmt.Errorf("parsing avro schema: %w", err)
			}

			opts := avroparquet.Options{
				WriteOldListStructure: oldListStructure,
				AddListElementRecords: addListElementRecords,
				Logger:                log,
			}
			ps, err := avroparquet.NewSchemaConverter(opts).Convert(avroSchema)
			if err != nil {
				return fmt.Errorf("converting schema: %w", err)
			}
			pqschema.PrintSchema(ps.Root(), os.Stdout, 2)
			return nil
		},
	}
	schemaCmd.Flags().BoolVar(&oldListStructure, "old-list-structure", false,
		"use the legacy 2-level list encoding")
	schemaCmd.Flags().BoolVar(&addListElementRecords, "add-list-element-records", false,
		"wrap primitive list elements in synthetic element records")
	root.AddCommand(schemaCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
