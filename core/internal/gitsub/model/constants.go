package model

const (
	// VisibleDirName is the metadata directory git recognises as a repository.
	VisibleDirName = ".git"

	// HiddenDirName is the name a child's metadata directory carries while
	// the parent runs a command that must see the child as plain files.
	HiddenDirName = ".gitsub_hidden"

	// ManifestFileName is the lock manifest at the parent root.
	ManifestFileName = ".gitsub"
)
