// Package companyform holds the state of an "add company" form: the draft
// being edited, request flags, and the feedback shown next to each field.
//
// A Form is safe for concurrent use. Network calls run without holding the
// state lock; each response is applied to the state only after it resolves.
package companyform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/placement-portal/internal/client"
	"github.com/jonathan/placement-portal/internal/linkedin"
	"github.com/jonathan/placement-portal/internal/types"
	"golang.org/x/sync/singleflight"
)

// Feedback messages shown by the form.
const (
	MsgInvalidLinkedInURL = "LinkedIn URL Invalid!"
	MsgScrapeFailed       = "Some error occurred!"
	MsgCompanyExists      = "Company with same name already exists"
	MsgCompanyAdded       = "Company Added Successfully!"
)

var (
	// ErrInvalidLinkedInURL is returned by Scrape when no company identifier
	// can be extracted from the draft's LinkedIn URL.
	ErrInvalidLinkedInURL = errors.New("linkedin url invalid")
	// ErrSubmitInFlight is returned by Submit while a previous submit is pending.
	ErrSubmitInFlight = errors.New("submit already in progress")
	// ErrUnknownField is returned by SetField for names outside the draft.
	ErrUnknownField = errors.New("unknown field")
)

// Backend is the pair of REST calls the form depends on.
// *client.Client satisfies it.
type Backend interface {
	ScrapeCompanyProfile(ctx context.Context, profileID string) (*types.ScrapedProfile, error)
	AddCompany(ctx context.Context, draft types.CompanyDraft) (*types.Company, error)
}

// State is a snapshot of the form.
type State struct {
	Draft       types.CompanyDraft
	Scraping    bool
	Submitting  bool
	Success     bool
	Error       string
	Errors      []types.FieldError
	ScrapeError string
}

// Form is the state holder for one company draft.
type Form struct {
	backend Backend
	logger  *log.Logger

	mu             sync.Mutex
	state          State
	pendingScrapes int

	scrapes singleflight.Group
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used for request failures.
func WithLogger(l *log.Logger) Option {
	return func(f *Form) {
		f.logger = l
	}
}

// New creates an empty form backed by b.
func New(b Backend, opts ...Option) *Form {
	f := &Form{
		backend: b,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns a copy of the current state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Form) snapshotLocked() State {
	s := f.state
	if f.state.Errors != nil {
		s.Errors = append([]types.FieldError{}, f.state.Errors...)
	}
	return s
}

// SetField clears all feedback and assigns value to the named draft field.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.state.Draft.Get(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	f.state.ScrapeError = ""
	f.state.Error = ""
	f.state.Errors = nil
	f.state.Draft.Set(name, value)
	return nil
}

// DismissSuccess hides the success notification.
func (f *Form) DismissSuccess() {
	f.mu.Lock()
	f.state.Success = false
	f.mu.Unlock()
}

// Scrape pre-fills the draft from the company's LinkedIn profile.
//
// The identifier comes from the draft's LinkedIn URL; if none can be found
// ScrapeError is set and no request is made. Non-empty response fields
// replace name, natureOfBusiness, website, linkedIn and logo; empty ones
// leave the draft as is. Concurrent calls for the same identifier share one
// request, which outlives any single caller; each caller stops waiting when
// its own ctx is done. Scraping stays set while any scrape is pending.
func (f *Form) Scrape(ctx context.Context) error {
	f.mu.Lock()
	f.state.ScrapeError = ""
	profileID, ok := linkedin.CompanyID(f.state.Draft.LinkedIn)
	if !ok {
		f.state.ScrapeError = MsgInvalidLinkedInURL
		f.mu.Unlock()
		return ErrInvalidLinkedInURL
	}
	f.pendingScrapes++
	f.state.Scraping = true
	f.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	ch := f.scrapes.DoChan(profileID, func() (any, error) {
		return f.backend.ScrapeCompanyProfile(shared, profileID)
	})

	var (
		profile *types.ScrapedProfile
		err     error
	)
	select {
	case res := <-ch:
		profile, _ = res.Val.(*types.ScrapedProfile)
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingScrapes--
	f.state.Scraping = f.pendingScrapes > 0

	if err != nil {
		f.logger.Printf("[scrape] profile %s failed: %v", profileID, err)
		f.state.ScrapeError = MsgScrapeFailed
		return fmt.Errorf("scrape company profile %s: %w", profileID, err)
	}

	f.state.ScrapeError = ""
	profile.MergeInto(&f.state.Draft)
	return nil
}

// Submit posts the draft to the creation endpoint.
//
// On success the Success flag is set. On failure a response carrying a
// field-error list replaces Errors; any other failure is reported as a name
// conflict in Error.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.state.Submitting = true
	draft := f.state.Draft
	f.mu.Unlock()

	_, err := f.backend.AddCompany(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Submitting = false

	if err == nil {
		f.state.Success = true
		return nil
	}

	f.logger.Printf("[submit] add company %q failed: %v", draft.Name, err)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.HasFieldErrors() {
		f.state.Error = ""
		f.state.Errors = append([]types.FieldError{}, apiErr.Errors...)
	} else {
		f.state.Error = MsgCompanyExists
		f.state.Errors = nil
	}
	return fmt.Errorf("add company: %w", err)
}
