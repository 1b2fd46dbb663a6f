// Package avroparquet is the bidirectional conversion engine between the
// Avro generic record model and the Parquet columnar layout: schema
// translation, write-side flattening of records into field events, and
// read-side materialization of column values back into records.
package avroparquet

import (
	"go.uber.org/zap"
)

// CompatibilityMode selects the shape of values the read path materializes.
type CompatibilityMode string

const (
	// CompatibilityCurrent builds the converter tree from the Avro schema
	// and returns schema-aware values (avro.Utf8, avro.EnumSymbol,
	// *avro.Array).
	CompatibilityCurrent CompatibilityMode = "CURRENT"
	// CompatibilityLegacy builds the converter tree from the Parquet schema
	// alone and returns plain primitive shapes (string, []interface{}) for
	// consumers unaware of the Avro schema.
	CompatibilityLegacy CompatibilityMode = "LEGACY"
)

// Options configures a conversion stream. It is an explicit value threaded
// through construction, never ambient process state, so streams with
// different settings coexist in one process. The zero value selects current
// compatibility and 3-level list wrapping.
type Options struct {
	// Compatibility selects the read-path converter tree; see
	// CompatibilityMode.
	Compatibility CompatibilityMode

	// WriteOldListStructure selects the legacy 2-level repeated-group array
	// encoding on write. Legacy wrapping cannot represent nullable array
	// elements; translating such a schema fails.
	WriteOldListStructure bool

	// AddListElementRecords wraps every 3-level primitive array element in a
	// synthetic one-field record, for interoperability with writers that
	// always emit group elements.
	AddListElementRecords bool

	// Conversions extends or overrides the value conversion registry,
	// keyed by logical type name.
	Conversions map[string]ValueConverter

	// Logger receives construction-time debug logs. Nil means no logging.
	Logger *zap.Logger
}

func (o Options) compatibility() CompatibilityMode {
	if o.Compatibility == "" {
		return CompatibilityCurrent
	}
	return o.Compatibility
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// registry builds the stream's conversion registry: built-ins first, then
// caller overrides. Resolved once per stream, read-only afterwards.
func (o Options) registry() *ConversionRegistry {
	r := NewConversionRegistry()
	for name, c := range o.Conversions {
		r.Register(name, c)
	}
	return r
}
