package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	ActionState() ActionStateRepository
	TrackedAction() TrackedActionRepository
	Preference() PreferenceRepository

	// Close releases backend resources
	Close() error
}
