package structs

import "io/fs"

// Match is one located artifact candidate. FSPath is the io/fs path used to
// re-open the entry for extraction; Path is the /-rooted display path. The
// filesystem handle is retained so extraction can run as a separate pass.
type Match struct {
	Path      string
	FSPath    string
	Size      int64
	Partition *Partition
	Fsys      fs.FS
}
