package domain

import "errors"

// Precondition violations. Commands that hit one of these are rejected
// before any state change; nothing here is fatal to the process.
var (
	// ErrNoOpenPeriod is returned by commands that must post into the
	// currently open period when no period is open.
	ErrNoOpenPeriod = errors.New("no open period")

	// ErrNoOpenFiscalYear is returned by lifecycle transitions that
	// require an open fiscal year.
	ErrNoOpenFiscalYear = errors.New("no open fiscal year")

	// ErrPeriodStillOpen is returned when opening a month while the
	// previous one has not been closed yet.
	ErrPeriodStillOpen = errors.New("current period is still open")

	// ErrAlreadyTerminal is returned when mutating an entity that has
	// reached a terminal state (sold asset, ended lease, paid-off loan,
	// closed period or fiscal year).
	ErrAlreadyTerminal = errors.New("entity is in a terminal state")

	// ErrNonPositiveAmount is returned when a monetary input that must
	// be strictly positive is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidDuration is returned for degenerate schedule inputs
	// (zero or negative months/years).
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrLeaseNotMature is returned when a buyout or return is requested
	// before all scheduled installments have been made.
	ErrLeaseNotMature = errors.New("lease has not reached its full term")

	// ErrNotFound is wrapped by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")
)
