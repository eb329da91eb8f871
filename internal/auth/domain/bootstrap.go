package domain

// BootstrapData describes the first administrator created on an empty store.
type BootstrapData struct {
	AdminEmail    string
	AdminPassword string
}
