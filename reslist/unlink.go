package reslist

import "os"

// UnlinkCleanup allocates and commits a cleanup that removes filename when
// its owning Reslist is destroyed. Failure to unlink is ignored — matching
// the source's unlink_cleanup, whose whole purpose is best-effort temp-file
// hygiene, not reporting.
func UnlinkCleanup(filename string) *Cleanup {
	cl := Allocate()
	cl.Commit(func(data any) {
		_ = os.Remove(data.(string))
	}, filename)
	return cl
}
