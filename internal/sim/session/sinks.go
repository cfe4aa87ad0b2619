package session

import "errors"

type multiLog []CommandLog

// MultiLog fans each entry out to every non-nil log. All logs are written
// even when one fails; the errors are joined.
func MultiLog(logs ...CommandLog) CommandLog {
	var out multiLog
	for _, l := range logs {
		if l != nil {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiLog) WriteCommand(e CommandLogEntry) error {
	var errs []error
	for _, l := range m {
		if err := l.WriteCommand(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
