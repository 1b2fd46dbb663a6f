package avroparquet

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mescobar2016/parquet-mr/pkg/avro"
	"github.com/mescobar2016/parquet-mr/pkg/codecerrors"
)

// ValueConverter maps between an in-memory value and its physical byte
// representation for one logical type. The schema node supplies the
// logical-type parameters (precision, scale, fixed size) captured at build
// time.
type ValueConverter interface {
	ToPhysical(value interface{}, s *avro.Schema) ([]byte, error)
	FromPhysical(raw []byte, s *avro.Schema) (interface{}, error)
}

// ConversionRegistry maps logical type names to value converters. Populated
// at stream construction and read-only afterwards. A lookup miss is not an
// error: the value passes through as raw bytes untouched.
type ConversionRegistry struct {
	converters map[string]ValueConverter
}

// NewConversionRegistry returns a registry holding the built-in converters
// (currently decimal).
func NewConversionRegistry() *ConversionRegistry {
	r := &ConversionRegistry{converters: make(map[string]ValueConverter)}
	r.Register(avro.LogicalDecimal, DecimalConverter{})
	return r
}

// Register adds or replaces the converter for a logical type name.
func (r *ConversionRegistry) Register(name string, c ValueConverter) {
	r.converters[name] = c
}

// Lookup returns the converter for a logical type name, if registered.
func (r *ConversionRegistry) Lookup(name string) (ValueConverter, bool) {
	c, ok := r.converters[name]
	return c, ok
}

// DecimalConverter converts between decimal.Decimal values and the
// two's-complement big-endian unscaled representation Parquet stores:
// minimal-length for byte-array leaves, zero/sign-extended to the declared
// size for fixed-length leaves.
type DecimalConverter struct{}

// ToPhysical encodes a decimal.Decimal against the schema's
// decimal(precision, scale) annotation. Values whose rescaling would drop
// digits, or whose unscaled magnitude exceeds the declared precision, are
// conversion errors.
func (DecimalConverter) ToPhysical(value interface{}, s *avro.Schema) ([]byte, error) {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		d = *v
	default:
		return nil, codecerrors.Newf(codecerrors.ErrorTypeConversion,
			"decimal field expects decimal.Decimal, got %T", value)
	}

	lt := s.Logical
	if lt == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeConversion,
			"decimal conversion without decimal annotation")
	}

	unscaled, err := unscaledAt(d, lt.Scale)
	if err != nil {
		return nil, err
	}
	if digits(unscaled) > lt.Precision {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeConversion,
			"value %s exceeds decimal(%d,%d)", d.String(), lt.Precision, lt.Scale)
	}

	raw := twosComplement(unscaled)
	if s.Type != avro.TypeFixed {
		return raw, nil
	}
	if len(raw) > s.Size {
		return nil, codecerrors.Newf(codecerrors.ErrorTypeConversion,
			"value %s needs %d bytes, fixed(%d) too small", d.String(), len(raw), s.Size)
	}
	padded := make([]byte, s.Size)
	pad := byte(0x00)
	if unscaled.Sign() < 0 {
		pad = 0xFF
	}
	for i := 0; i < s.Size-len(raw); i++ {
		padded[i] = pad
	}
	copy(padded[s.Size-len(raw):], raw)
	return padded, nil
}

// FromPhysical decodes two's-complement big-endian bytes into a
// decimal.Decimal at the schema's declared scale.
func (DecimalConverter) FromPhysical(raw []byte, s *avro.Schema) (interface{}, error) {
	lt := s.Logical
	if lt == nil {
		return nil, codecerrors.New(codecerrors.ErrorTypeConversion,
			"decimal conversion without decimal annotation")
	}
	if len(raw) == 0 {
		return nil, codecerrors.New(codecerrors.ErrorTypeConversion,
			"empty byte sequence for decimal")
	}
	return decimal.NewFromBigInt(fromTwosComplement(raw), int32(-lt.Scale)), nil
}

// unscaledAt rescales d to the target scale, rejecting any loss of digits.
func unscaledAt(d decimal.Decimal, scale int) (*big.Int, error) {
	unscaled := d.Coefficient()
	shift := int(d.Exponent()) + scale
	switch {
	case shift > 0:
		unscaled.Mul(unscaled, pow10(shift))
	case shift < 0:
		q, r := new(big.Int).QuoRem(unscaled, pow10(-shift), new(big.Int))
		if r.Sign() != 0 {
			return nil, codecerrors.Newf(codecerrors.ErrorTypeConversion,
				"value %s cannot be rescaled to scale %d without precision loss",
				d.String(), scale)
		}
		unscaled = q
	}
	return unscaled, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// digits returns the number of decimal digits in |v|, with 0 counted as one.
func digits(v *big.Int) int {
	abs := new(big.Int).Abs(v)
	if abs.Sign() == 0 {
		return 1
	}
	return len(abs.Text(10))
}

// twosComplement encodes v as the minimal-length two's-complement big-endian
// byte sequence. A non-negative value whose magnitude's leading byte has the
// high bit set gets a 0x00 sign-extension byte, so round-tripping never flips
// sign.
func twosComplement(v *big.Int) []byte {
	if v.Sign() >= 0 {
		n := v.BitLen()/8 + 1
		out := make([]byte, n)
		v.FillBytes(out[n-len(v.Bytes()):])
		return out
	}

	// Smallest n with v >= -2^(8n-1).
	mag := new(big.Int).Neg(v)
	n := new(big.Int).Sub(mag, big.NewInt(1)).BitLen()/8 + 1

	tc := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	tc.Add(tc, v)
	out := make([]byte, n)
	tc.FillBytes(out)
	return out
}

// fromTwosComplement decodes a big-endian two's-complement byte sequence of
// any length, including sign/zero padding.
func fromTwosComplement(raw []byte) *big.Int {
	v := new(big.Int).SetBytes(raw)
	if raw[0]&0x80 != 0 {
		span := new(big.Int).Lsh(big.NewInt(1), uint(8*len(raw)))
		v.Sub(v, span)
	}
	return v
}
