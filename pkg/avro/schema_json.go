package avro

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"
)

// SchemaFromJSON builds a Schema from an Avro schema document. This is the
// schema-parsing front end: the conversion engine itself only ever sees the
// resulting *Schema.
func SchemaFromJSON(doc []byte) (*Schema, error) {
	var raw interface{}
	if err := gojson.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	p := &schemaParser{named: make(map[string]*Schema)}
	return p.parse(raw)
}

// SchemaFromCodec accepts a schema already parsed and validated by goavro
// and builds the codec's model from its canonical form.
func SchemaFromCodec(codec *goavro.Codec) (*Schema, error) {
	return SchemaFromJSON([]byte(codec.Schema()))
}

type schemaParser struct {
	named map[string]*Schema
}

func (p *schemaParser) parse(raw interface{}) (*Schema, error) {
	switch v := raw.(type) {
	case string:
		return p.parseName(v)
	case []interface{}:
		branches := make([]*Schema, 0, len(v))
		for _, b := range v {
			s, err := p.parse(b)
			if err != nil {
				return nil, err
			}
			branches = append(branches, s)
		}
		return NewUnionSchema(branches...), nil
	case map[string]interface{}:
		return p.parseObject(v)
	default:
		return nil, fmt.Errorf("unexpected schema element %T", raw)
	}
}

func (p *schemaParser) parseName(name string) (*Schema, error) {
	switch name {
	case "null":
		return NewPrimitiveSchema(TypeNull), nil
	case "boolean":
		return NewPrimitiveSchema(TypeBoolean), nil
	case "int":
		return NewPrimitiveSchema(TypeInt), nil
	case "long":
		return NewPrimitiveSchema(TypeLong), nil
	case "float":
		return NewPrimitiveSchema(TypeFloat), nil
	case "double":
		return NewPrimitiveSchema(TypeDouble), nil
	case "bytes":
		return NewPrimitiveSchema(TypeBytes), nil
	case "string":
		return NewPrimitiveSchema(TypeString), nil
	default:
		if s, ok := p.named[name]; ok {
			return s, nil
		}
		return nil, fmt.Errorf("unknown type name %q", name)
	}
}

func (p *schemaParser) parseObject(obj map[string]interface{}) (*Schema, error) {
	typeName, _ := obj["type"].(string)
	if typeName == "" {
		// {"type": {...}} or {"type": [...]} nests a full schema
		if nested, ok := obj["type"]; ok {
			return p.parse(nested)
		}
		return nil, fmt.Errorf("schema object missing type")
	}

	var s *Schema
	switch typeName {
	case "record":
		name, _ := obj["name"].(string)
		rawFields, _ := obj["fields"].([]interface{})
		fields := make([]*Field, 0, len(rawFields))
		// Registered before field parsing so recursive references resolve.
		s = NewRecordSchema(name)
		p.register(name, obj, s)
		for _, rf := range rawFields {
			fm, ok := rf.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("record %q has malformed field", name)
			}
			fname, _ := fm["name"].(string)
			fschema, err := p.parse(fm["type"])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", fname, err)
			}
			f := NewField(fname, fschema)
			if def, ok := fm["default"]; ok {
				f.HasDefault = true
				f.Default = def
			}
			f.Index = len(fields)
			fields = append(fields, f)
		}
		s.Fields = fields
	case "enum":
		name, _ := obj["name"].(string)
		rawSymbols, _ := obj["symbols"].([]interface{})
		symbols := make([]string, 0, len(rawSymbols))
		for _, rs := range rawSymbols {
			sym, ok := rs.(string)
			if !ok {
				return nil, fmt.Errorf("enum %q has non-string symbol", name)
			}
			symbols = append(symbols, sym)
		}
		s = NewEnumSchema(name, symbols...)
		p.register(name, obj, s)
	case "fixed":
		name, _ := obj["name"].(string)
		size, ok := obj["size"].(float64)
		if !ok {
			return nil, fmt.Errorf("fixed %q missing size", name)
		}
		s = NewFixedSchema(name, int(size))
		p.register(name, obj, s)
	case "array":
		items, err := p.parse(obj["items"])
		if err != nil {
			return nil, err
		}
		s = NewArraySchema(items)
	case "map":
		values, err := p.parse(obj["values"])
		if err != nil {
			return nil, err
		}
		s = NewMapSchema(values)
	default:
		prim, err := p.parseName(typeName)
		if err != nil {
			return nil, err
		}
		s = prim
	}

	if lt, ok := obj["logicalType"].(string); ok {
		precision, _ := obj["precision"].(float64)
		scale, _ := obj["scale"].(float64)
		s = s.WithLogicalType(&LogicalType{
			Name:      lt,
			Precision: int(precision),
			Scale:     int(scale),
		})
	}
	return s, nil
}

// register records a named type, using the namespace-qualified name when a
// namespace is declared.
func (p *schemaParser) register(name string, obj map[string]interface{}, s *Schema) {
	p.named[name] = s
	if ns, ok := obj["namespace"].(string); ok && ns != "" {
		p.named[ns+"."+name] = s
	}
}
