package model

// FileSummary counts outcomes for one processed statement file.
type FileSummary struct {
	File            string
	Institution     string
	Rows            int
	Canonical       int
	ParseErrors     int
	UnknownAccounts int
}

// RunSummary aggregates per-cause skip and error counts for a pipeline run.
// A run always produces one, even when every row parsed cleanly.
type RunSummary struct {
	Files            []FileSummary
	Canonical        int
	UnsupportedFiles int // files skipped: institution not recognized
	ParseErrors      int
	UnknownAccounts  int // missing configuration; flag prominently when nonzero
	UnknownTypes     int // rows classified unknown and excluded from aggregation
}

// Add folds a file summary into the run totals.
func (s *RunSummary) Add(f FileSummary) {
	s.Files = append(s.Files, f)
	s.Canonical += f.Canonical
	s.ParseErrors += f.ParseErrors
	s.UnknownAccounts += f.UnknownAccounts
}

// Clean reports whether the run completed without skips of any kind.
func (s *RunSummary) Clean() bool {
	return s.UnsupportedFiles == 0 && s.ParseErrors == 0 && s.UnknownAccounts == 0
}
