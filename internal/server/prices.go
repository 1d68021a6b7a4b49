package server

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tripcost/travelcost/internal/pricing"
)

// handlePrices serves the price table as an HTML page.
// Restricted to localhost, like /stats.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r.RemoteAddr) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var profiles []*pricing.DestinationProfile
	var maxDaily int64
	for _, name := range s.svc.Destinations() {
		p, err := s.svc.DestinationInfo(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, p)
		maxDaily = max(maxDaily, p.MinimumDailyCost(pricing.LodgingHotel))
	}
	stats := s.metrics.FullStats()
	cur := html.EscapeString(s.svc.PriceCurrency())

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="30">
<title>Travel Cost - Price Table</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'SF Mono', 'Fira Code', 'Cascadia Code', monospace; background: #0d1117; color: #c9d1d9; padding: 24px; }
  h1 { color: #58a6ff; font-size: 18px; margin-bottom: 16px; }
  .summary { display: flex; gap: 24px; margin-bottom: 24px; padding: 16px; background: #161b22; border: 1px solid #30363d; border-radius: 6px; }
  .stat-label { font-size: 11px; color: #8b949e; text-transform: uppercase; letter-spacing: 1px; }
  .stat-value { font-size: 24px; font-weight: bold; color: #f0f6fc; }
  .stat-value.warn { color: #ffa657; }
  table { width: 100%; border-collapse: collapse; background: #161b22; border: 1px solid #30363d; border-radius: 6px; overflow: hidden; }
  th { text-align: left; padding: 10px 14px; font-size: 11px; color: #8b949e; text-transform: uppercase; letter-spacing: 1px; background: #0d1117; border-bottom: 1px solid #30363d; }
  td { padding: 10px 14px; font-size: 13px; border-bottom: 1px solid #21262d; }
  tr:last-child td { border-bottom: none; }
  .dest { color: #58a6ff; }
  .currency { color: #d2a8ff; }
  .price { color: #ffa657; }
  .bar-container { width: 100px; height: 8px; background: #21262d; border-radius: 4px; overflow: hidden; display: inline-block; vertical-align: middle; margin-right: 8px; }
  .bar { height: 100%; border-radius: 4px; }
  .bar-ok { background: #3fb950; }
  .bar-warn { background: #d29922; }
  .bar-danger { background: #f85149; }
  .empty { text-align: center; padding: 40px; color: #8b949e; }
  .footer { margin-top: 16px; font-size: 11px; color: #484f58; }
</style>
</head>
<body>
<h1>Travel Cost - Price Table</h1>
<div class="summary">`)
	writeStat(&b, "Destinations", fmt.Sprintf("%d", len(profiles)), "")
	writeStat(&b, "Budget Unit", humanize.Comma(s.svc.BudgetUnit())+" "+cur, "")
	writeStat(&b, "Tool Calls", humanize.Comma(stats.Tools.Calls), "")
	writeStat(&b, "Infeasible Budgets", humanize.Comma(stats.Budgets.Infeasible), "warn")
	b.WriteString(`
</div>
`)

	if len(profiles) == 0 {
		b.WriteString(`<div class="empty">The price table is empty.</div>`)
	} else {
		b.WriteString(`<table>
<tr>
  <th>Destination</th>
  <th>Currency</th>
  <th>Flights</th>
  <th>Hotel (budget / mid / luxury)</th>
  <th>Food (budget / mid / luxury)</th>
  <th>Local Transport</th>
  <th>Minimum Day</th>
</tr>
`)
		for _, p := range profiles {
			hotel := p.Accommodation[pricing.LodgingHotel]
			minDay := p.MinimumDailyCost(pricing.LodgingHotel)

			pct := float64(minDay) / float64(max(maxDaily, 1)) * 100
			barClass := "bar-ok"
			if pct > 80 {
				barClass = "bar-danger"
			} else if pct > 50 {
				barClass = "bar-warn"
			}

			fmt.Fprintf(&b, `<tr>
  <td class="dest">%s</td>
  <td class="currency">%s</td>
  <td class="price">%s</td>
  <td>%s / %s / %s</td>
  <td>%s / %s / %s</td>
  <td>%s</td>
  <td><div class="bar-container"><div class="bar %s" style="width:%.0f%%"></div></div>%s</td>
</tr>
`,
				html.EscapeString(p.Name), html.EscapeString(p.Currency),
				humanize.Comma(p.FlightCostEstimate),
				humanize.Comma(hotel.Budget), humanize.Comma(hotel.Mid), humanize.Comma(hotel.Luxury),
				humanize.Comma(p.Food.Budget), humanize.Comma(p.Food.Mid), humanize.Comma(p.Food.Luxury),
				humanize.Comma(p.Transport.Local),
				barClass, pct, humanize.Comma(minDay))
		}
		b.WriteString(`</table>`)
	}

	fmt.Fprintf(&b, `
<div class="footer">Prices per traveler per day in %s. Auto-refreshes every 30 seconds.</div>
</body>
</html>`, cur)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func writeStat(b *strings.Builder, label, value, class string) {
	fmt.Fprintf(b, `
  <div class="stat">
    <div class="stat-label">%s</div>
    <div class="stat-value %s">%s</div>
  </div>`, label, class, value)
}
