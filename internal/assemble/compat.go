package assemble

import "strings"

// Compatibility is the result of comparing a candidate's data type against
// a known target column type (spec.md §4.10).
type Compatibility int

const (
	// Unknown means no left-side type was available to compare against.
	Unknown Compatibility = iota
	Compatible
	ImplicitConversion
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case ImplicitConversion:
		return "implicit conversion"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// category is one of the type-compatibility submodule's fixed buckets.
type category int

const (
	catOther category = iota
	catNumeric
	catString
	catTemporal
	catBinary
	catBoolean
	catUUID
	catJSON
	catXML
)

// Classify implements spec.md §4.10's comparison rules between a VALUES/SET
// target column's type and a candidate's type.
func Classify(leftType, rightType string) Compatibility {
	l := normalizeType(leftType)
	r := normalizeType(rightType)
	if l == "" || r == "" {
		return Unknown
	}
	if l == r {
		return Compatible
	}

	lc, rc := categorize(l), categorize(r)
	if lc == rc {
		return Compatible
	}
	if (lc == catNumeric && rc == catBoolean) || (lc == catBoolean && rc == catNumeric) {
		return ImplicitConversion
	}
	if (lc == catString && rc == catTemporal) || (lc == catTemporal && rc == catString) {
		return ImplicitConversion
	}
	if (lc == catString && rc == catNumeric) || (lc == catNumeric && rc == catString) {
		return Incompatible
	}
	return Incompatible
}

// normalizeType lowercases a type name and strips a trailing size/precision
// suffix like "(10)" or "(10, 2)", per spec.md §4.10.
func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

var categoryTable = map[string]category{
	"int": catNumeric, "smallint": catNumeric, "bigint": catNumeric, "tinyint": catNumeric,
	"decimal": catNumeric, "numeric": catNumeric, "float": catNumeric, "real": catNumeric,
	"money": catNumeric, "smallmoney": catNumeric, "double precision": catNumeric, "serial": catNumeric,

	"varchar": catString, "nvarchar": catString, "char": catString, "nchar": catString,
	"text": catString, "ntext": catString, "citext": catString,

	"date": catTemporal, "datetime": catTemporal, "datetime2": catTemporal, "smalldatetime": catTemporal,
	"time": catTemporal, "timestamp": catTemporal, "timestamptz": catTemporal, "interval": catTemporal,

	"binary": catBinary, "varbinary": catBinary, "blob": catBinary, "bytea": catBinary, "image": catBinary,

	"bit": catBoolean, "boolean": catBoolean, "bool": catBoolean,

	"uuid": catUUID, "uniqueidentifier": catUUID,

	"json": catJSON, "jsonb": catJSON,

	"xml": catXML,
}

func categorize(normalized string) category {
	if c, ok := categoryTable[normalized]; ok {
		return c
	}
	return catOther
}
