// Package dashboard implements the monitoring workflow of one browser
// session: loading the baseline and current datasets, validating them, and
// deriving KPIs, reports, club views and sanitized exports.
//
// It depends on the session store, the audit recorder and the export
// publisher through interfaces and never imports from api/.
package dashboard
