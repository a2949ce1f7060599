package scanner

// Options configures a scan.
type Options struct {
	// Root is the directory to scan.
	Root string

	// Recursive walks the whole tree instead of the top level only.
	Recursive bool

	// MinSize excludes files smaller than this many bytes.
	MinSize int64

	// WithHash computes a SHA-256 digest for every file. Hashing reads every
	// byte, so large trees get noticeably slower.
	WithHash bool
}
