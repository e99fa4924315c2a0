package profile

// Per-class compression ratios for the size estimate.
const (
	ratioCompressible   = 0.5
	ratioIncompressible = 1.0
	ratioUnknown        = 0.9
)

// EstimateArchiveBytes returns a conservative estimate of the zipped
// size of files, without compressing anything.
func EstimateArchiveBytes(files []FileSize, table Table) int64 {
	var est float64
	for _, f := range files {
		switch table.Classify(f.Path) {
		case ClassCompressible:
			est += float64(f.Bytes) * ratioCompressible
		case ClassIncompressible:
			est += float64(f.Bytes) * ratioIncompressible
		default:
			est += float64(f.Bytes) * ratioUnknown
		}
	}
	return int64(est)
}
