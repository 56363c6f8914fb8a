// Package gallery holds the value types the upload pipeline passes around:
// candidates awaiting upload, the references an upload produces, and the
// ordered reference list that backs a listing's image gallery.
//
// # References
//
// A Reference is either persistent (a stable object URL that survives a save)
// or ephemeral (a process-local placeholder used only for immediate preview).
// Ephemeral references must never be saved as final state; List.HasEphemeral
// reports whether a gallery still needs a re-save before it is durable.
//
// # Lists
//
// List is ordered and index 0 is the primary image. Duplicates are allowed.
// Mutations (Append, RemoveAt, MoveTo) never modify their input: they return a
// new List and keep the relative order of untouched elements.
package gallery
