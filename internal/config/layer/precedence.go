package layer

// Standard priority levels for configuration layers.
const (
	PriorityBuiltin  = 0
	PriorityUser     = 100
	PriorityArgs     = 500
	PriorityDocument = 700
	PriorityCall     = 1000
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceUser:
		return PriorityUser
	case SourceArgs:
		return PriorityArgs
	case SourceDocument:
		return PriorityDocument
	case SourceCall:
		return PriorityCall
	default:
		return PriorityBuiltin
	}
}
