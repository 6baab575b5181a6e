package nsmigrate

// Resource is one named unit of content handed to a Transformer,
// such as an archive entry.
type Resource struct {
	// Name is the slash-separated logical path (for example
	// "javax/servlet/Servlet.class").
	Name string

	// Data is the resource content. Transformers never modify it.
	Data []byte
}

// Resource naming conventions recognized by Transform.
const (
	ClassSuffix    = ".class"
	MarkupSuffix   = ".xml"
	ServicesPrefix = "META-INF/services/"
)
