package tracker

import (
	"strings"

	"github.com/teranos/jobtrack/api"
	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/internal/httpclient"
	"github.com/teranos/jobtrack/joblist"
)

// Form is the create-job form as the user filled it in. AppliedFrom is raw
// input; Input parses it.
type Form struct {
	Company         string `json:"company"`
	JobTitle        string `json:"job_title"`
	AppliedFrom     string `json:"applied_from"`
	ApplicationLink string `json:"application_link"`
	Note            string `json:"note"`
}

// Empty reports whether every field is blank.
func (f Form) Empty() bool {
	return f == Form{}
}

// Input validates the form and converts it to the API payload. Company,
// job title and source are required; a link, when given, must be an
// absolute http(s) URL.
func (f Form) Input() (api.JobInput, error) {
	company := strings.TrimSpace(f.Company)
	if company == "" {
		return api.JobInput{}, errors.NewInvalidRequestError("company is required")
	}
	title := strings.TrimSpace(f.JobTitle)
	if title == "" {
		return api.JobInput{}, errors.NewInvalidRequestError("job title is required")
	}

	source, err := joblist.ParseSource(f.AppliedFrom)
	if err != nil {
		return api.JobInput{}, err
	}
	if source == "" {
		return api.JobInput{}, errors.NewInvalidRequestError("applied from is required")
	}

	link := strings.TrimSpace(f.ApplicationLink)
	if link != "" {
		if _, err := httpclient.ParseWebURL(link); err != nil {
			return api.JobInput{}, errors.Mark(errors.Wrapf(err, "application link %q", link), errors.ErrInvalidRequest)
		}
	}

	return api.JobInput{
		Company:         company,
		JobTitle:        title,
		AppliedFrom:     source,
		ApplicationLink: link,
		Note:            f.Note,
	}, nil
}
