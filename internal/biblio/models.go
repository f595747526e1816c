package biblio

// Summary condenses one exchange-document of an OPS biblio reply.
type Summary struct {
	PatentID        string            `json:"patent_id"`
	Country         string            `json:"country"`
	DocNumber       string            `json:"doc_number"`
	Kind            string            `json:"kind"`
	Status          string            `json:"status,omitempty"`
	FamilyID        string            `json:"family_id,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty"`
	Titles          map[string]string `json:"titles,omitempty"`
	Applicants      []string          `json:"applicants,omitempty"`
	IPCR            []string          `json:"ipcr,omitempty"`
	CPC             []string          `json:"cpc,omitempty"`
	Citations       []Citation        `json:"citations,omitempty"`
}

// Citation in references-cited
type Citation struct {
	CitedID    string   `json:"cited_id"`
	Categories []string `json:"categories,omitempty"`
}

// PatentClassification from patent-classifications
type PatentClassification struct {
	Scheme               string
	ClassificationSymbol string
}
