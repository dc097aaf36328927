package browser

import "FundLens/internal/model"

// User-facing messages.
const (
	MsgFundsLoadError  = "Errore nel caricamento dei fondi. Ricarica la pagina."
	MsgNoPDF           = "Nessun link PDF disponibile per questo fondo."
	MsgExtractionError = "Errore nell'estrazione dei dati: "
	MsgNoChart         = "Impossibile estrarre il grafico dal PDF."
	CaptionChart       = "Grafico ISC dal Documento Originale"
)

// Detail is what the detail panel shows for the selected fund.
type Detail struct {
	Title       string
	Type        string
	PDFLink     string
	ViewPDFLink string
}

// ChartCard is the single card rendered in the charts container. Exactly
// one of ImageURL and Message is set.
type ChartCard struct {
	ImageURL string
	Caption  string
	Message  string
}

// MetaLine is the secondary line of a fund list entry.
func MetaLine(f model.Fund) string {
	return "Albo: " + f.Albo + " | Tipo: " + f.Type
}

// View is the page the controller drives. Methods map to the page elements:
// loadingFunds, the list container with fundList and countBadge, and the
// detail panel with detailTitle, detailType, pdfLink, viewPdfLink,
// chartsContainer, costError and costLoading.
//
// The controller calls View methods from its own goroutines, one at a time.
type View interface {
	// ShowFundsLoading shows the fund-list loading indicator.
	ShowFundsLoading()
	// HideFundsLoading hides the fund-list loading indicator.
	HideFundsLoading()
	// ShowFundsError replaces the loading indicator with a persistent
	// error message styled as an error.
	ShowFundsError(msg string)

	// SetListVisible toggles the list container.
	SetListVisible(visible bool)
	// RenderList replaces the list entries and sets the count badge to
	// len(funds).
	RenderList(funds []model.Fund)
	// HighlightFund marks entry i of the rendered list active and clears
	// the mark on all others.
	HighlightFund(i int)

	// ShowDetail fills and reveals the detail panel. On narrow screens the
	// list is hidden in favour of the panel.
	ShowDetail(d Detail)
	// HideDetail hides the detail panel and restores the list.
	HideDetail()

	// ResetAnalysis empties and hides the charts container and hides the
	// analysis error.
	ResetAnalysis()
	// SetCostLoading toggles the analysis loading indicator.
	SetCostLoading(visible bool)
	// ShowCostError shows msg in the analysis error area.
	ShowCostError(msg string)
	// RenderChart reveals the charts container, clears it and appends card.
	RenderChart(card ChartCard)
}
