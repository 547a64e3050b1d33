package parser

const (
	// DefaultAttribute is the attribute that marks a trait for expansion
	DefaultAttribute = "blanket_trait"

	// Keywords the trait reader cares about
	KeywordTrait  = "trait"
	KeywordFn     = "fn"
	KeywordType   = "type"
	KeywordConst  = "const"
	KeywordWhere  = "where"
	KeywordPub    = "pub"
	KeywordUnsafe = "unsafe"
	KeywordAuto   = "auto"
)

// fnQualifiers may precede `fn` in a method signature
var fnQualifiers = map[string]bool{
	"const":   true,
	"async":   true,
	"unsafe":  true,
	"extern":  true,
	"default": true,
}
