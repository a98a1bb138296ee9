package prompt

// Template is the JSON skeleton the model is asked to fill in.
// Field order follows the struct order when serialized.
type Template struct {
	Data     ResumeData `json:"data"`
	Skills   []string   `json:"skills"`
	Websites []Website  `json:"websites"`
}

// ResumeData is the "data" object of the template
type ResumeData struct {
	ResumeID             string       `json:"resume_id"`
	FileName             string       `json:"file_name"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	FullName             string       `json:"full_name"`
	EmailID              string       `json:"email_id"`
	PhoneNumber          string       `json:"phone_number"`
	Gender               *string      `json:"gender"`
	JobTitles            string       `json:"job_titles"`
	Category             string       `json:"category"`
	SubCategory          string       `json:"sub_category"`
	City                 string       `json:"city"`
	Country              string       `json:"country"`
	Address              []Address    `json:"address"`
	Websites             []Website    `json:"websites"`
	Qualifications       string       `json:"qualifications"`
	Summary              string       `json:"summary"`
	EmploymentData       []Employment `json:"employment_data"`
	Employers            string       `json:"employers"`
	TotalExperienceYears string       `json:"total_experience_years"`
	JobProfile           string       `json:"job_profile"`
	SalaryCurrent        *string      `json:"salary_current"`
	SalaryExpectations   *string      `json:"salary_expectations"`
	CurrentEmployer      string       `json:"current_employer"`
	ExecutiveSummary     string       `json:"executive_summary"`
	Objectives           string       `json:"objectives"`
	Hobbies              string       `json:"hobbies"`
	PlainText            string       `json:"plain_text"`
}

type CountryCode struct {
	IsoAlpha2 string `json:"IsoAlpha2"`
	IsoAlpha3 string `json:"IsoAlpha3"`
	UNCode    string `json:"UNCode"`
}

type Address struct {
	Street           string      `json:"Street"`
	City             string      `json:"City"`
	State            string      `json:"State"`
	StateIsoCode     string      `json:"StateIsoCode"`
	Country          string      `json:"Country"`
	CountryCode      CountryCode `json:"CountryCode"`
	ZipCode          string      `json:"ZipCode"`
	FormattedAddress string      `json:"FormattedAddress"`
	Type             string      `json:"Type"`
	ConfidenceScore  int         `json:"ConfidenceScore"`
}

type Website struct {
	Type string `json:"Type"`
	URL  string `json:"Url"`
}

type Employer struct {
	EmployerName    string `json:"EmployerName"`
	FormattedName   string `json:"FormattedName"`
	ConfidenceScore int    `json:"ConfidenceScore"`
}

type JobProfile struct {
	Title         string   `json:"Title"`
	FormattedName string   `json:"FormattedName"`
	RelatedSkills []string `json:"RelatedSkills"`
}

type Location struct {
	City         string      `json:"City"`
	State        string      `json:"State"`
	StateIsoCode string      `json:"StateIsoCode"`
	Country      string      `json:"Country"`
	CountryCode  CountryCode `json:"CountryCode"`
}

type Employment struct {
	Employer           Employer   `json:"Employer"`
	JobProfile         JobProfile `json:"JobProfile"`
	Location           Location   `json:"Location"`
	JobPeriod          string     `json:"JobPeriod"`
	FormattedJobPeriod string     `json:"FormattedJobPeriod"`
	StartDate          string     `json:"StartDate"`
	EndDate            string     `json:"EndDate"`
	IsCurrentEmployer  string     `json:"IsCurrentEmployer"`
	JobDescription     string     `json:"JobDescription"`
}

// NewTemplate returns the skeleton with its fixed defaults and placeholders
func NewTemplate(fileName, text string) *Template {
	return &Template{
		Data: ResumeData{
			ResumeID:    "[Generate a random hash/id]",
			FileName:    fileName,
			Category:    "Information",
			SubCategory: "Software developers and programmers",
			Address: []Address{{
				Type:            "Present",
				ConfidenceScore: 7,
			}},
			Websites: []Website{{}},
			EmploymentData: []Employment{{
				Employer:   Employer{ConfidenceScore: 9},
				JobProfile: JobProfile{RelatedSkills: []string{}},
			}},
			PlainText: text,
		},
		Skills:   []string{},
		Websites: []Website{{}},
	}
}
