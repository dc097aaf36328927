package model

// Fund is one row of the COVIP cost-sheet list.
type Fund struct {
	Name string `json:"name"`
	Albo string `json:"albo"` // COVIP registry number
	Type string `json:"type"`
	Link string `json:"link"` // cost-sheet PDF, empty when COVIP publishes none
}

// HasLink reports whether the fund has a cost-sheet PDF.
func (f Fund) HasLink() bool { return f.Link != "" }
