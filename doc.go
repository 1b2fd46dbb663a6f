// Package parquetmr is a bidirectional codec between the Avro generic record
// model and the Parquet columnar layout: it derives Parquet message types
// from Avro schemas, flattens Avro records into the field-event stream a
// Parquet container consumes, and materializes Avro values back from the
// container's tree walk.
//
// # Key Packages
//
//	pkg/avro        - Avro logical schema model, generic values, schema parsing
//	pkg/parquetio   - field-event sink and tree-walk receiver contracts, plus
//	                  an in-memory event buffer implementing both
//	pkg/avroparquet - schema translation, record writing, converter trees,
//	                  and the logical-type value conversion registry
//	pkg/logger      - zap logger construction for the command-line tools
//
// # Quick Start
//
// Write a record and read it back:
//
//	schema, _ := avro.SchemaFromJSON(doc)
//	writer, _ := avroparquet.NewRecordWriter(schema, avroparquet.Options{})
//
//	buf := parquetio.NewEventBuffer()
//	_ = writer.Write(record, buf)
//
//	tree, _ := avroparquet.NewConverterTree(schema, writer.ParquetSchema(), avroparquet.Options{})
//	tree.Reset()
//	_ = buf.ReplayRecord(0, tree.Root())
//	value, _ := tree.Materialize()
//
// One writer or converter tree serves exactly one open stream; independent
// streams need independent instances but share nothing mutable.
package parquetmr
