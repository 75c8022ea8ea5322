package openalex

// Work is a scholarly work record as returned by the OpenAlex works API,
// restricted to the fields this tool selects.
type Work struct {
	ID              string       `json:"id"`
	DOI             string       `json:"doi"`
	Title           string       `json:"title"`
	Authorships     []Authorship `json:"authorships"`
	PublicationYear int          `json:"publication_year"`
	PublicationDate string       `json:"publication_date"`
	IDs             WorkIDs      `json:"ids"`
	PrimaryLocation *Location    `json:"primary_location"`
	BestOALocation  *Location    `json:"best_oa_location"`
	CitedByCount    int          `json:"cited_by_count"`
	CitedByAPIURL   string       `json:"cited_by_api_url"`
	Type            string       `json:"type"`
	TypeCrossref    string       `json:"type_crossref"`
	UpdatedDate     string       `json:"updated_date"`
}

// Authorship is one entry in a work's author list.
type Authorship struct {
	Author Author `json:"author"`
}

// Author holds the display name of an authorship's author.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// WorkIDs holds the external identifiers of a work. OpenAlex returns these
// as resolver URLs (e.g. "https://pubmed.ncbi.nlm.nih.gov/38857748").
type WorkIDs struct {
	OpenAlex string `json:"openalex"`
	DOI      string `json:"doi"`
	PMID     string `json:"pmid"`
	PMCID    string `json:"pmcid"`
}

// Location describes where a version of the work is hosted.
// PDFURL is a pointer because the API returns explicit nulls.
type Location struct {
	PDFURL         *string `json:"pdf_url"`
	LandingPageURL string  `json:"landing_page_url"`
	Source         *Source `json:"source"`
}

// Source is the venue of a location.
type Source struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// FailedCall records a per-identifier fetch failure. Failed identifiers are
// reported, never retried.
type FailedCall struct {
	UID        string `json:"uid"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason"`
}

// listResponse is a cursor-paged works listing.
type listResponse struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []Work `json:"results"`
}

// apiErrorBody is the JSON error payload OpenAlex returns on non-200 responses.
type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
