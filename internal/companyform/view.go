package companyform

import "github.com/jonathan/placement-portal/internal/types"

// FieldView is how one input should be rendered.
type FieldView struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	HelperText  string
	Error       bool
}

// View is the rendering surface of a form.
type View struct {
	Fields     []FieldView
	Scraping   bool
	Submitting bool
	// Banner is the success notification text, empty when dismissed.
	Banner string
}

// Field returns the view of the named field.
func (v View) Field(name string) (FieldView, bool) {
	for _, fv := range v.Fields {
		if fv.Name == name {
			return fv, true
		}
	}
	return FieldView{}, false
}

type fieldMeta struct {
	label       string
	placeholder string
	helper      string
}

var fieldMetas = map[string]fieldMeta{
	types.FieldLinkedIn:         {"LinkedIn", "https://www.linkedin.com/company/google/", "Company Profile LinkedIn URL"},
	types.FieldName:             {"Company Name", "eg : Google", "Full Name of Company"},
	types.FieldNatureOfBusiness: {"Nature Of Business", "", "Companies Nature of Business eg : (IT, Computer Software)"},
	types.FieldLogo:             {"Company Logo", "", "Company Logo URL"},
	types.FieldWebsite:          {"Company Website", "", "Company Website URL"},
	types.FieldExpectedCTC:      {"CTC (expected)", "eg : 30", "Expected CTC in LPA provided by Company"},
	types.FieldExpectedBase:     {"Base (expected)", "eg : 18", "Expected Base in LPA provided by Company"},
	types.FieldExpectedStipend:  {"Stipend (expected)", "eg : 80000", "Expected Internship Stipend per Month in INR provided by Company"},
	types.FieldLocation:         {"Location", "eg : India", "Company Office Location"},
	types.FieldRemarks:          {"Remarks", "eg : Hiring this year", "Any Remarks Regarding Company"},
}

// View renders the current state.
func (f *Form) View() View {
	return Render(f.State())
}

// Render builds the view for a state snapshot.
//
// The LinkedIn input shows the scrape message, the name input shows the
// global message before its own field error, and every other input shows
// its field error. Inputs without feedback show their static helper text.
func Render(s State) View {
	v := View{
		Fields:     make([]FieldView, 0, len(types.DraftFields)),
		Scraping:   s.Scraping,
		Submitting: s.Submitting,
	}
	if s.Success {
		v.Banner = MsgCompanyAdded
	}

	for _, name := range types.DraftFields {
		meta := fieldMetas[name]
		value, _ := s.Draft.Get(name)
		fv := FieldView{
			Name:        name,
			Label:       meta.label,
			Placeholder: meta.placeholder,
			Value:       value,
			HelperText:  meta.helper,
		}

		switch {
		case name == types.FieldLinkedIn && s.ScrapeError != "":
			fv.HelperText, fv.Error = s.ScrapeError, true
		case name == types.FieldLinkedIn:
			// Only scrape feedback is shown here.
		case name == types.FieldName && s.Error != "":
			fv.HelperText, fv.Error = s.Error, true
		default:
			if msg, ok := fieldError(s.Errors, name); ok {
				fv.HelperText, fv.Error = msg, true
			}
		}

		v.Fields = append(v.Fields, fv)
	}
	return v
}

func fieldError(errs []types.FieldError, name string) (string, bool) {
	for _, fe := range errs {
		if fe.Param == name {
			return fe.Error, true
		}
	}
	return "", false
}
