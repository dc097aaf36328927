package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"FundLens/internal/model"
	"FundLens/internal/recorder"
)

// MaxSearchResults caps the funds listed in a search reply.
const MaxSearchResults = 10

// FormatDigest formats the activity summary sent by the daily digest and
// the /stats command.
func FormatDigest(stats *recorder.Stats, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>FundLens</b> | %s\n", now.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Dal %s\n\n", stats.Since.Format("2006-01-02 15:04")))

	b.WriteString("🔎 <b>Analisi schede costi</b>\n")
	b.WriteString(fmt.Sprintf("  Totali: %d\n", stats.Analyses))
	b.WriteString(fmt.Sprintf("  Con grafico: %d\n", stats.Charts))
	b.WriteString(fmt.Sprintf("  Senza grafico: %d\n", stats.NoChart))
	b.WriteString(fmt.Sprintf("  Errori: %d\n", stats.Errors))
	if stats.Analyses > 0 {
		rate := float64(stats.Charts) / float64(stats.Analyses) * 100
		b.WriteString(fmt.Sprintf("  Estrazione riuscita: %.0f%%\n", rate))
	}

	b.WriteString("\n📥 <b>Elenco COVIP</b>\n")
	b.WriteString(fmt.Sprintf("  Aggiornamenti: %d (errori %d)\n", stats.CatalogFetches, stats.CatalogErrors))
	b.WriteString(fmt.Sprintf("  Fondi nell'ultimo elenco: %d\n", stats.LastFundCount))

	if len(stats.TopFunds) > 0 {
		b.WriteString("\n🏆 <b>Fondi più consultati</b>\n")
		for i, f := range stats.TopFunds {
			b.WriteString(fmt.Sprintf("  %d. %s (albo %s): %d\n", i+1, html.EscapeString(f.Name), html.EscapeString(f.Albo), f.Count))
		}
	}
	return b.String()
}

// FormatSearchResults formats the reply to /search.
func FormatSearchResults(term string, funds []model.Fund) string {
	if len(funds) == 0 {
		return fmt.Sprintf("Nessun fondo trovato per \"%s\".", html.EscapeString(term))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%d fondi</b> per \"%s\"\n\n", len(funds), html.EscapeString(term)))
	for i, f := range funds {
		if i == MaxSearchResults {
			b.WriteString(fmt.Sprintf("… e altri %d. Affina la ricerca.\n", len(funds)-MaxSearchResults))
			break
		}
		name := html.EscapeString(f.Name)
		if f.HasLink() {
			name = fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(f.Link), name)
		}
		b.WriteString(fmt.Sprintf("• %s\n  Albo: %s | Tipo: %s\n", name, html.EscapeString(f.Albo), html.EscapeString(f.Type)))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Comandi disponibili:\n" +
		"• /search &lt;nome o albo&gt; - cerca un fondo\n" +
		"• /stats - attività delle ultime 24 ore\n" +
		"• /refresh - aggiorna l'elenco COVIP"
}
