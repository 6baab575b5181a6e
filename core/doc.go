// Package nsmigrate rewrites compiled Java artifacts from one package
// namespace to another without recompiling them.
//
// A [Transformer] is built once from an ordered [Mapping] and applied to
// individual resources:
//   - Class files have every CONSTANT_Utf8 entry patched in place; the rest
//     of the class is copied verbatim.
//   - XML resources have their text rewritten with the dotted mapping.
//   - Service registrations under META-INF/services are renamed.
//   - Any other resource is renamed when its path matches a rule.
//
// Transformers are immutable and safe for concurrent use.
package nsmigrate
