package ports

// ObjectURLResolver turns a stored media reference into a public URL.
// Absolute URLs are returned unchanged.
type ObjectURLResolver interface {
	PublicURL(ref string) string
}
