// Package cli implements the interactive shopkeeper gallery client.
//
// The REPL edits the image gallery of one listing at a time:
//
//	open <listing>    load a listing from the server
//	add <path>...     upload files; failed uploads stay as local previews
//	ls                show the gallery, primary image first
//	rm <i>            remove an image
//	mv <from> <to>    reorder images
//	save [-f]         persist the gallery; -f drops local-only images
//	status            show listing, free slots and connectivity
//	help, exit
//
// A background watcher checks the server's gRPC health endpoint and switches
// the prompt between online and offline.
package cli
