package wiki

import (
	"fmt"
	"strings"
	"time"

	pdomain "github.com/wyfcoding/alphaview/internal/portfolio/domain"
)

// RenderSummary 将持仓与目标配置渲染为 wiki 标记语言的摘要页
func RenderSummary(positions []*pdomain.Position, targets []*pdomain.Target, asOf time.Time) string {
	var b strings.Builder

	b.WriteString("= Portfolio Summary =\n\n")
	fmt.Fprintf(&b, "''Updated: %s''\n\n", asOf.Format("2006-01-02 15:04 MST"))

	b.WriteString("== Holdings ==\n\n")
	b.WriteString("{| class=\"wikitable sortable\"\n")
	b.WriteString("! Ticker !! Shares !! Avg Cost !! Current Value !! Unrealized P&L !! ROI %\n")
	for _, p := range positions {
		b.WriteString("|-\n")
		fmt.Fprintf(&b, "| %s || %s || %s || %s || %s || %s\n",
			p.Ticker,
			p.Shares.String(),
			p.AvgCostBasis.StringFixed(2),
			p.CurrentValue.StringFixed(2),
			p.UnrealizedPnL.StringFixed(2),
			p.ROIPercent().StringFixed(2),
		)
	}
	b.WriteString("|}\n\n")

	if len(targets) > 0 {
		b.WriteString("== Target Allocation ==\n\n")
		b.WriteString("{| class=\"wikitable sortable\"\n")
		b.WriteString("! Ticker !! Name !! Sector !! Target Weight %\n")
		for _, t := range targets {
			b.WriteString("|-\n")
			fmt.Fprintf(&b, "| %s || %s || %s || %s\n",
				t.Ticker, t.Name, t.Sector, t.TargetWeight.StringFixed(2))
		}
		b.WriteString("|}\n")
	}

	return b.String()
}
