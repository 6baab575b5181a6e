// Package classfile rewrites CONSTANT_Utf8 entries inside JVM class files.
//
// The patcher never decodes the whole class. It indexes the constant pool,
// searches each Utf8 entry's modified UTF-8 bytes for mapping matches, and
// re-emits the class by copying untouched regions verbatim around the
// patched entries.
package classfile
